// Package rules 实现基于约定文本的排班校验引擎。
//
// 约定是自由文本，解释器通过关键词和正则启发式地从文本中提取结构化的规则谓词，
// 校验引擎再把谓词应用到候选排班上。这里不做任何语法分析，全部是简单的子串匹配，
// 因此一条约定的文本可能同时命中多种规则
package rules

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/careshift-dev/hospital-roster/backend/internal/domain"
)

type PredicateKind int

const (
	// KindWeekendBan：文本包含 weekend 即生效，不要求同时出现限制词，
	// 这和具体星期几的禁排规则不对称，属于沿用已久的既有行为
	KindWeekendBan PredicateKind = iota
	// KindDayBan：文本同时包含某个星期几的英文名和限制词
	KindDayBan
	// KindNightBan：禁止夜班，开始时刻 >= 22 点或 < 6 点
	KindNightBan
	// KindMorningBan：禁止早班，开始时刻在 [5, 12)
	KindMorningBan
	// KindAfternoonBan：禁止午后和晚间班次，开始时刻在 [12, 22)
	KindAfternoonBan
	// KindConsecutiveBan：禁止连续排班，目标日期前后一天已有排班即违规
	KindConsecutiveBan
	// KindWeeklyHourCap：每周工时上限
	KindWeeklyHourCap
	// KindWeeklyShiftCap：每周班次数量上限
	KindWeeklyShiftCap
)

// Predicate 是从约定文本中提取出来的一条可执行规则
type Predicate struct {
	Kind  PredicateKind
	Day   time.Weekday // 仅 KindDayBan 使用
	Limit int          // 仅 KindWeeklyHourCap 和 KindWeeklyShiftCap 使用
}

// 限制词，出现其中之一才会让星期几、早班、午后这几类禁排规则生效。
// 注意 "no" 是纯子串匹配，它也会命中 noon、north 这样的单词，
// 这个模糊性是有意保留的
var restrictionKeywords = []string{"cannot", "no", "restrict", "unavailable"}

var dayNames = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

var (
	weeklyHourRegexp  = regexp.MustCompile(`(\d+)\s*hours?\s+per\s+week`)
	weeklyShiftRegexp = regexp.MustCompile(`(\d+)\s*shifts?\s+per\s+week`)
)

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Interpret 把一条约定的标题和描述转换成零或多条规则谓词。
// 纯函数，没有任何 I/O；没有命中任何关键词的约定返回空切片，这不是错误。
// 谓词按固定的检查顺序返回，所有检查都会执行，不存在短路
func Interpret(c *domain.Convention) []Predicate {
	text := strings.ToLower(c.Title + " " + c.Description)

	predicates := make([]Predicate, 0)
	hasRestriction := containsAny(text, restrictionKeywords)

	// 周末禁排（不要求限制词，见 KindWeekendBan 的说明）
	if strings.Contains(text, "weekend") {
		predicates = append(predicates, Predicate{Kind: KindWeekendBan})
	}

	// 具体星期几禁排
	if hasRestriction {
		for _, dn := range dayNames {
			if strings.Contains(text, dn.name) {
				predicates = append(predicates, Predicate{Kind: KindDayBan, Day: dn.day})
			}
		}
	}

	// 夜班禁排（同样不要求限制词）
	if containsAny(text, []string{"night", "overnight", "late evening"}) {
		predicates = append(predicates, Predicate{Kind: KindNightBan})
	}

	// 早班禁排
	if hasRestriction && containsAny(text, []string{"morning", "early"}) {
		predicates = append(predicates, Predicate{Kind: KindMorningBan})
	}

	// 午后和晚间禁排
	if hasRestriction && containsAny(text, []string{"afternoon", "evening"}) {
		predicates = append(predicates, Predicate{Kind: KindAfternoonBan})
	}

	// 连续排班禁排
	if containsAny(text, []string{"consecutive", "back-to-back", "double"}) {
		predicates = append(predicates, Predicate{Kind: KindConsecutiveBan})
	}

	// 每周工时上限，例如 "40 hours per week"
	if m := weeklyHourRegexp.FindStringSubmatch(text); m != nil {
		// 正则只会捕获数字，Atoi 不会失败
		limit, _ := strconv.Atoi(m[1])
		predicates = append(predicates, Predicate{Kind: KindWeeklyHourCap, Limit: limit})
	}

	// 每周班次数量上限，例如 "5 shifts per week"
	if m := weeklyShiftRegexp.FindStringSubmatch(text); m != nil {
		limit, _ := strconv.Atoi(m[1])
		predicates = append(predicates, Predicate{Kind: KindWeeklyShiftCap, Limit: limit})
	}

	return predicates
}
