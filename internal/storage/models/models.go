package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Candidate 候选人主表，按邮箱/电话识别同一候选人
type Candidate struct {
	CandidateID  string    `gorm:"type:char(36);primaryKey"`
	PrimaryName  string    `gorm:"type:varchar(255)"`
	PrimaryPhone string    `gorm:"type:varchar(50);uniqueIndex:idx_candidates_primary_phone_unique"`
	PrimaryEmail string    `gorm:"type:varchar(255);uniqueIndex:idx_candidates_primary_email_unique"`
	CreatedAt    time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt    time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (Candidate) TableName() string {
	return "candidates"
}

// Job 岗位信息表，保存JD原文与解析出的结构化要求
type Job struct {
	JobID               string         `gorm:"type:char(36);primaryKey"`
	JobTitle            string         `gorm:"type:varchar(255)"`
	JobDescriptionText  string         `gorm:"type:text;not null"`
	JDTextMD5           string         `gorm:"type:char(32);index:idx_jobs_jd_text_md5"`
	RequiredSkillsJSON  datatypes.JSON `gorm:"type:json"`
	MinYearsRequired    int            `gorm:"type:int;default:0"`
	EducationLevelsJSON datatypes.JSON `gorm:"type:json"`
	Status              string         `gorm:"type:varchar(50);default:'ACTIVE';index:idx_jobs_status"`
	CreatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (Job) TableName() string {
	return "jobs"
}

// 简历提交的处理状态
const (
	SubmissionStatusEvaluated    = "EVALUATED"
	SubmissionStatusUploadFailed = "UPLOAD_FAILED"
)

// ResumeSubmission 简历提交快照表，记录原始文件与解析文本在对象存储中的位置
type ResumeSubmission struct {
	SubmissionUUID      string         `gorm:"type:char(36);primaryKey"`
	CandidateID         *string        `gorm:"type:char(36);index:idx_rs_candidate_id"`
	SubmissionTimestamp time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_rs_submission_timestamp"`
	OriginalFilename    string         `gorm:"type:varchar(255)"`
	OriginalFilePathOSS string         `gorm:"type:varchar(1024)"`
	ParsedTextPathOSS   string         `gorm:"type:varchar(1024)"`
	RawTextMD5          string         `gorm:"type:char(32);index:idx_rs_raw_text_md5"`
	ParsedBasicInfo     datatypes.JSON `gorm:"type:json"`
	ParserVersion       string         `gorm:"type:varchar(50)"`
	ProcessingStatus    string         `gorm:"type:varchar(50);default:'EVALUATED';index:idx_rs_processing_status"`
	CreatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	Candidate *Candidate `gorm:"foreignKey:CandidateID;references:CandidateID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (ResumeSubmission) TableName() string {
	return "resume_submissions"
}

// MatchEvaluation 简历-岗位匹配评估表，保存一次打分的完整分解
type MatchEvaluation struct {
	EvaluationID      uint64         `gorm:"primaryKey;autoIncrement"`
	SubmissionUUID    string         `gorm:"type:char(36);not null;index:idx_me_submission_uuid;uniqueIndex:idx_me_submission_job_unique,priority:1"`
	JobID             string         `gorm:"type:char(36);not null;index:idx_me_job_id_overall_score,priority:1;uniqueIndex:idx_me_submission_job_unique,priority:2"`
	OverallScore      float64        `gorm:"type:float;index:idx_me_job_id_overall_score,priority:2"`
	SkillMatchScore   float64        `gorm:"type:float"`
	KeywordScore      float64        `gorm:"type:float"`
	ExperienceScore   float64        `gorm:"type:float"`
	QualityScore      float64        `gorm:"type:float"`
	MatchedSkillsJSON datatypes.JSON `gorm:"type:json"`
	MissingSkillsJSON datatypes.JSON `gorm:"type:json"`
	SuggestionsJSON   datatypes.JSON `gorm:"type:json"`
	ScorerVersion     string         `gorm:"type:varchar(50)"`
	EvaluatedAt       *time.Time     `gorm:"type:datetime(6)"`
	CreatedAt         time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt         time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	ResumeSubmission *ResumeSubmission `gorm:"foreignKey:SubmissionUUID;references:SubmissionUUID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Job              *Job              `gorm:"foreignKey:JobID;references:JobID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (MatchEvaluation) TableName() string {
	return "match_evaluations"
}

// StringsToJSON 将字符串切片序列化为datatypes.JSON
func StringsToJSON(values []string) (datatypes.JSON, error) {
	if values == nil {
		values = []string{}
	}
	bytes, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}

// MapToJSON 将map序列化为datatypes.JSON
func MapToJSON(m map[string]interface{}) (datatypes.JSON, error) {
	bytes, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}
