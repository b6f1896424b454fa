package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// MatchModulePrefix 匹配评分模块
	MatchModulePrefix = "match"
	// JobModulePrefix 岗位模块
	JobModulePrefix = "job"
	// FileModulePrefix 文件模块
	FileModulePrefix = "file"

	// EntityScore 评分实体
	EntityScore = "score"
	// EntityText 文本实体
	EntityText = "text"
	// EntityDedupSet 去重集合实体
	EntityDedupSet = "dedup_set"
	// EntityMD5ToUUID MD5到UUID的映射实体
	EntityMD5ToUUID = "md5_to_uuid"
	// EntityLock 分布式锁实体
	EntityLock = "lock"

	// KeyMatchScore 简历与JD的评分缓存 (STRING, JSON)
	// 格式: app:match:score:{resumeMD5}:{jdMD5}
	KeyMatchScore = AppPrefix + ":" + MatchModulePrefix + ":" + EntityScore + ":%s:%s"

	// KeyJobDescriptionText JD文本缓存 (STRING)
	// 格式: app:job:text:{jobID}
	KeyJobDescriptionText = AppPrefix + ":" + JobModulePrefix + ":" + EntityText + ":%s"

	// KeyFileMD5Set 文件MD5集合，用于快速去重 (SET)
	// 格式: app:file:dedup_set
	KeyFileMD5Set = AppPrefix + ":" + FileModulePrefix + ":" + EntityDedupSet

	// KeyFileMD5ToSubmissionUUID MD5到SubmissionUUID的映射 (STRING)
	// 格式: app:file:md5_to_uuid:{md5}
	KeyFileMD5ToSubmissionUUID = AppPrefix + ":" + FileModulePrefix + ":" + EntityMD5ToUUID + ":%s"

	// KeyJobCreateLock 岗位创建互斥锁 (STRING, SETNX)
	// 格式: app:job:lock:{jdMD5}
	KeyJobCreateLock = AppPrefix + ":" + JobModulePrefix + ":" + EntityLock + ":%s"
)
