package pipeline

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"leadscout/internal/domain"
)

// seniorityPattern matches decision-maker titles, including the C?O forms.
var seniorityPattern = regexp.MustCompile(`(?i)\b(?:partner|director|manager|cxo|owner|vice\s*president|chief|c.o|ceo|cto|cfo|coo|president)\b`)

// pastRoleWindow is how recently a past employee must have left the target
// company to remain a useful lead.
const pastRoleWindow = 5 // years

// MatchesSeniority reports whether title names a senior role.
func MatchesSeniority(title string) bool {
	return seniorityPattern.MatchString(title)
}

// companyMatches applies loose bidirectional substring containment, so
// "Acme" matches "Acme Corp" and vice versa. Known to false-positive on very
// short names.
func companyMatches(payloadCompany, target string) bool {
	a := strings.ToLower(strings.TrimSpace(payloadCompany))
	b := strings.ToLower(strings.TrimSpace(target))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// ExtractCurrentTitle returns the title of the most recently started ongoing
// role, or the empty string when the profile has none.
func ExtractCurrentTitle(p *domain.ProfilePayload) string {
	var current []domain.Experience
	for _, exp := range p.Experiences {
		if exp.EndsAt == nil {
			current = append(current, exp)
		}
	}
	if len(current) == 0 {
		return ""
	}
	sortByStartDesc(current)
	return current[0].Title
}

// ExtractTitleAtCompany returns the title of the most recent role at the
// target company that passes the employment filter. For past and all filters,
// roles that ended more than five years ago are ignored.
func ExtractTitleAtCompany(p *domain.ProfilePayload, company string, filter domain.EmploymentFilter, now time.Time) string {
	var matched []domain.Experience
	cutoff := now.AddDate(-pastRoleWindow, 0, 0)

	for _, exp := range p.Experiences {
		if !companyMatches(exp.Company, company) {
			continue
		}
		if filter == domain.FilterCurrent && exp.EndsAt != nil {
			continue
		}
		if filter == domain.FilterPast && exp.EndsAt == nil {
			continue
		}
		if (filter == domain.FilterPast || filter == domain.FilterAll) && exp.EndsAt != nil && exp.EndsAt.Year != 0 {
			month := exp.EndsAt.Month
			if month == 0 {
				month = 1
			}
			ended := time.Date(exp.EndsAt.Year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			if ended.Before(cutoff) {
				continue
			}
		}
		matched = append(matched, exp)
	}
	if len(matched) == 0 {
		return ""
	}
	sortByStartDesc(matched)
	return matched[0].Title
}

// pastEmployeeCriteria checks the past-employee rule: a role at the target
// company that ended within the last five years, ten or more years of total
// tenure, and a senior title in that role.
func pastEmployeeCriteria(p *domain.ProfilePayload, company string, now time.Time) bool {
	var role *domain.Experience
	for i := range p.Experiences {
		exp := &p.Experiences[i]
		if companyMatches(exp.Company, company) && exp.EndsAt != nil {
			role = exp
			break
		}
	}
	if role == nil || role.EndsAt.Year == 0 {
		return false
	}

	month := role.EndsAt.Month
	if month == 0 {
		month = 1
	}
	ended := time.Date(role.EndsAt.Year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	if ended.Before(now.AddDate(-pastRoleWindow, 0, 0)) {
		return false
	}

	if ExperienceYears(p.Experiences, now) < 10.0 {
		return false
	}

	return MatchesSeniority(role.Title)
}

// operativeTitleCriteria gates on the operative title: the headline, or the
// current role's title when the headline is absent. Tenure is re-checked with
// the combined rule (current role present: 6+ years, otherwise 10+). The
// asymmetry with the per-filter tenure gates below is inherited behavior and
// kept as is.
func operativeTitleCriteria(p *domain.ProfilePayload, now time.Time) bool {
	years := ExperienceYears(p.Experiences, now)
	if ExtractCurrentTitle(p) != "" {
		if years < 6.0 {
			return false
		}
	} else if years < 10.0 {
		return false
	}

	title := p.Headline
	if title == "" {
		title = ExtractCurrentTitle(p)
	}
	if title == "" {
		return false
	}
	return MatchesSeniority(title)
}

// Evaluate applies the eligibility rules to an enriched profile. It is a pure
// function of the payload, the employment filter, and the target company at
// evaluation time; the outcome is never recomputed later.
func Evaluate(p *domain.ProfilePayload, filter domain.EmploymentFilter, company, title string, now time.Time) bool {
	years := ExperienceYears(p.Experiences, now)

	meets := false
	switch filter {
	case domain.FilterCurrent:
		meets = years >= 6.0
	case domain.FilterPast:
		meets = years >= 10.0 && pastEmployeeCriteria(p, company, now)
	default: // all
		if ExtractCurrentTitle(p) != "" {
			meets = years >= 6.0
		} else {
			meets = years >= 10.0 && pastEmployeeCriteria(p, company, now)
		}
	}

	if meets && title != "" {
		meets = operativeTitleCriteria(p, now)
	}
	return meets
}

func sortByStartDesc(exps []domain.Experience) {
	sort.SliceStable(exps, func(i, j int) bool {
		yi, mi := startOrZero(exps[i])
		yj, mj := startOrZero(exps[j])
		if yi != yj {
			return yi > yj
		}
		return mi > mj
	})
}

func startOrZero(exp domain.Experience) (int, int) {
	if exp.StartsAt == nil {
		return 0, 0
	}
	return exp.StartsAt.Year, exp.StartsAt.Month
}
