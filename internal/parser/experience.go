package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateRangeRe 匹配 "Jan 2020 - Present"、"01/2019 to 03/2021" 这类任职时间段
// 起止日期各支持两种写法：月份名+年份、MM/YYYY；结束位置还接受在职标记
// 捕获组: 1起始月名 2起始年 3起始MM 4起始YYYY 5结束月名 6结束年 7结束MM 8结束YYYY 9在职标记
var dateRangeRe = func() *regexp.Regexp {
	const startPart = `(?:(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s*(\d{4})|(\d{1,2})[/-](\d{4}))`
	const endPart = `(?:(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s*(\d{4})|(\d{1,2})[/-](\d{4})|(present|current|now|ongoing))`
	return regexp.MustCompile(startPart + `\s*(?:-|–|—|to)\s*` + endPart)
}()

var monthAbbrevs = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// explicitYearsRe 匹配"5+ years of experience"这类自述年限
var explicitYearsRe = regexp.MustCompile(`(\d+)\s*\+?\s*years?(?:\s+of)?\s+(?:\w+\s+){0,2}experience`)

// ExperienceExtractor 从文本推断工作年限
// 时钟可注入，保证测试中"present"解析结果可复现
type ExperienceExtractor struct {
	now func() time.Time
}

// NewExperienceExtractor 创建年限推断器，now为nil时使用系统时钟
func NewExperienceExtractor(now func() time.Time) *ExperienceExtractor {
	if now == nil {
		now = time.Now
	}
	return &ExperienceExtractor{now: now}
}

// Years 估算总工作年限，保留一位小数
// 两条独立线索：任职时间段求和、自述年限取最大，最终取两者较大者
// 自述总年限往往高于时间段累加（存在空档或并行任职），因此信任较大的信号
func (e *ExperienceExtractor) Years(text string) float64 {
	fromRanges := e.sumDateRanges(text)
	fromMentions := maxExplicitYears(text)
	return math.Max(fromRanges, fromMentions)
}

// sumDateRanges 汇总所有任职时间段的月数并换算为年
// 时间段重叠不做去重，并行任职会被重复计入
func (e *ExperienceExtractor) sumDateRanges(text string) float64 {
	lowered := strings.ToLower(text)
	totalMonths := 0

	for _, m := range dateRangeRe.FindAllStringSubmatch(lowered, -1) {
		start, ok := parseRangeDate(m[1], m[2], m[3], m[4])
		if !ok {
			continue
		}

		var end time.Time
		if m[9] != "" {
			end = e.now()
		} else if endDate, ok := parseRangeDate(m[5], m[6], m[7], m[8]); ok {
			end = endDate
		} else {
			continue
		}

		months := (end.Year()-start.Year())*12 + int(end.Month()-start.Month())
		if months > 0 {
			totalMonths += months
		}
	}

	return math.Round(float64(totalMonths)/12*10) / 10
}

// parseRangeDate 解析时间段中的一端：月份名+年份 或 MM/YYYY
func parseRangeDate(monthName, yearA, monthNum, yearB string) (time.Time, bool) {
	if monthName != "" && yearA != "" {
		month, ok := monthAbbrevs[monthName]
		if !ok {
			return time.Time{}, false
		}
		year, err := strconv.Atoi(yearA)
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), true
	}
	if monthNum != "" && yearB != "" {
		m, err := strconv.Atoi(monthNum)
		if err != nil || m < 1 || m > 12 {
			return time.Time{}, false
		}
		year, err := strconv.Atoi(yearB)
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(year, time.Month(m), 1, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// maxExplicitYears 扫描自述年限短语，取出现过的最大值
func maxExplicitYears(text string) float64 {
	lowered := strings.ToLower(text)
	best := 0
	for _, m := range explicitYearsRe.FindAllStringSubmatch(lowered, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > best {
			best = n
		}
	}
	return float64(best)
}
