package storage

import "time"

// AnalysisCompletedEvent 一次简历评估完成后发布的事件
type AnalysisCompletedEvent struct {
	SubmissionUUID   string    `json:"submission_uuid"`          // 简历提交UUID
	JobID            string    `json:"job_id"`                   // 岗位ID
	OverallScore     float64   `json:"overall_score"`            // 总分 0-100
	SkillMatchScore  float64   `json:"skill_match_score"`        // 技能匹配分
	KeywordScore     float64   `json:"keyword_score"`            // 关键词密度分
	ExperienceScore  float64   `json:"experience_score"`         // 经验匹配分
	QualityScore     float64   `json:"quality_score"`            // 简历质量分
	MissingSkills    []string  `json:"missing_skills,omitempty"` // 缺失的必需技能
	OriginalFilename string    `json:"original_filename,omitempty"`
	EvaluatedAt      time.Time `json:"evaluated_at"`
}

// EventTypeAnalysisCompleted 分析完成事件类型名
const EventTypeAnalysisCompleted = "analysis.completed"
