package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 测试统一冻结参考时间，保证present的解析结果可复现
func frozenClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	}
}

func TestYearsFromExplicitMention(t *testing.T) {
	e := NewExperienceExtractor(frozenClock())

	assert.InDelta(t, 5.0, e.Years("5 years of experience in Python development"), 0.001,
		"自述年限应被直接采信")
	assert.InDelta(t, 8.0, e.Years("8+ years of professional experience"), 0.001)
}

func TestYearsFromDateRanges(t *testing.T) {
	e := NewExperienceExtractor(frozenClock())

	tests := []struct {
		name     string
		text     string
		expected float64
	}{
		{"月份名区间", "Software Engineer, Jan 2020 - Jan 2023", 3.0},
		{"数字月份区间", "Backend Developer 01/2019 - 01/2021", 2.0},
		{"present解析到冻结时间", "Data Analyst, Jun 2024 - Present", 1.0},
		{"to作为分隔符", "Jan 2021 to Jan 2022", 1.0},
		{"破折号分隔符", "Jan 2021 – Jan 2022", 1.0},
		{"多段累加", "Jan 2018 - Jan 2020. Later: Jan 2021 - Jan 2023", 4.0},
		{"无日期信息", "an enthusiastic junior developer", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, e.Years(tt.text), 0.001)
		})
	}
}

func TestYearsOverlappingRangesDoubleCount(t *testing.T) {
	// 并行任职不做去重，重叠时间段会被重复累计
	e := NewExperienceExtractor(frozenClock())
	text := "Engineer Jan 2020 - Jan 2022. Consultant Jan 2020 - Jan 2022"
	assert.InDelta(t, 4.0, e.Years(text), 0.001)
}

func TestYearsTakesMaxOfSignals(t *testing.T) {
	e := NewExperienceExtractor(frozenClock())

	// 自述10年 > 时间段累加2年，取自述值
	text := "10 years of experience. Jan 2020 - Jan 2022"
	assert.InDelta(t, 10.0, e.Years(text), 0.001)

	// 时间段累加4年 > 自述2年，取时间段值
	text = "2 years of experience with Go. Jan 2018 - Jan 2022"
	assert.InDelta(t, 4.0, e.Years(text), 0.001)
}

func TestYearsSkipsMalformedRanges(t *testing.T) {
	e := NewExperienceExtractor(frozenClock())

	// 倒序区间贡献为负，应被丢弃而不中断其余区间
	text := "Jan 2023 - Jan 2020. Jan 2021 - Jan 2022"
	assert.InDelta(t, 1.0, e.Years(text), 0.001)
}

func TestYearsRoundedToOneDecimal(t *testing.T) {
	e := NewExperienceExtractor(frozenClock())

	// 5个月 = 0.4166... 年，保留一位小数
	assert.InDelta(t, 0.4, e.Years("Jan 2024 - Jun 2024"), 0.001)
}

func TestYearsDefaultClock(t *testing.T) {
	// nil时钟回退到系统时间，present区间不应为负
	e := NewExperienceExtractor(nil)
	years := e.Years("Jan 2020 - Present")
	assert.GreaterOrEqual(t, years, 5.0, "2020年至今至少5年")
}
