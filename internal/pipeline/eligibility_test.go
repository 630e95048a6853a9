package pipeline

import (
	"testing"
	"time"

	"leadscout/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestMatchesSeniority(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"Director of Operations", true},
		{"Account Manager", true},
		{"Managing Partner", true},
		{"Vice President, Sales", true},
		{"Vice  President", true},
		{"CEO", true},
		{"cto", true},
		{"Chief Revenue Officer", true},
		{"Business Owner", true},
		{"President", true},
		{"Senior Software Engineer", false},
		{"Data Analyst", false},
		{"Consultant", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesSeniority(tt.title))
		})
	}
}

func TestExtractCurrentTitle(t *testing.T) {
	t.Run("no ongoing role", func(t *testing.T) {
		p := &domain.ProfilePayload{Experiences: []domain.Experience{
			{Company: "Acme", Title: "Engineer", StartsAt: ym(2010, 1), EndsAt: ym(2015, 1)},
		}}
		assert.Equal(t, "", ExtractCurrentTitle(p))
	})

	t.Run("most recent ongoing role wins", func(t *testing.T) {
		p := &domain.ProfilePayload{Experiences: []domain.Experience{
			{Company: "Acme", Title: "Advisor", StartsAt: ym(2015, 1)},
			{Company: "Globex", Title: "Director", StartsAt: ym(2020, 6)},
		}}
		assert.Equal(t, "Director", ExtractCurrentTitle(p))
	})
}

func TestExtractTitleAtCompany(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	p := &domain.ProfilePayload{Experiences: []domain.Experience{
		{Company: "Acme Corp", Title: "Director", StartsAt: ym(2020, 1)},
		{Company: "Acme Corp", Title: "Manager", StartsAt: ym(2015, 1), EndsAt: ym(2020, 1)},
		{Company: "Acme Corp", Title: "Engineer", StartsAt: ym(2008, 1), EndsAt: ym(2012, 1)},
		{Company: "Globex", Title: "VP", StartsAt: ym(2012, 1), EndsAt: ym(2015, 1)},
	}}

	t.Run("current filter takes the ongoing role", func(t *testing.T) {
		got := ExtractTitleAtCompany(p, "Acme", domain.FilterCurrent, now)
		assert.Equal(t, "Director", got)
	})

	t.Run("past filter skips ongoing roles", func(t *testing.T) {
		got := ExtractTitleAtCompany(p, "Acme", domain.FilterPast, now)
		assert.Equal(t, "Manager", got)
	})

	t.Run("past filter ignores roles ended outside the window", func(t *testing.T) {
		stale := &domain.ProfilePayload{Experiences: []domain.Experience{
			{Company: "Acme Corp", Title: "Engineer", StartsAt: ym(2008, 1), EndsAt: ym(2012, 1)},
		}}
		got := ExtractTitleAtCompany(stale, "Acme", domain.FilterPast, now)
		assert.Equal(t, "", got)
	})

	t.Run("unrelated company yields nothing", func(t *testing.T) {
		got := ExtractTitleAtCompany(p, "Initech", domain.FilterAll, now)
		assert.Equal(t, "", got)
	})
}

func TestEvaluate_CurrentFilter(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("under six years is ineligible regardless of title", func(t *testing.T) {
		p := &domain.ProfilePayload{
			Headline: "Director of Engineering",
			Experiences: []domain.Experience{
				{Company: "Acme", Title: "Director", StartsAt: ym(2018, 5)},
			},
		}
		assert.False(t, Evaluate(p, domain.FilterCurrent, "Acme", "Director", now))
	})

	t.Run("six plus years with a senior operative title is eligible", func(t *testing.T) {
		p := &domain.ProfilePayload{
			Headline: "Director of Engineering",
			Experiences: []domain.Experience{
				{Company: "Acme", Title: "Director", StartsAt: ym(2017, 1)},
			},
		}
		assert.True(t, Evaluate(p, domain.FilterCurrent, "Acme", "Director", now))
	})

	t.Run("six plus years with a non-senior operative title is ineligible", func(t *testing.T) {
		p := &domain.ProfilePayload{
			Headline: "Senior Engineer at Acme",
			Experiences: []domain.Experience{
				{Company: "Acme", Title: "Senior Engineer", StartsAt: ym(2017, 1)},
			},
		}
		assert.False(t, Evaluate(p, domain.FilterCurrent, "Acme", "Senior Engineer", now))
	})

	t.Run("empty title skips the operative title gate", func(t *testing.T) {
		p := &domain.ProfilePayload{
			Experiences: []domain.Experience{
				{Company: "Acme", Title: "Senior Engineer", StartsAt: ym(2017, 1)},
			},
		}
		assert.True(t, Evaluate(p, domain.FilterCurrent, "Acme", "", now))
	})
}

func TestEvaluate_PastFilter(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("senior role ended within window and ten years tenure", func(t *testing.T) {
		p := &domain.ProfilePayload{
			Headline: "Former Director at Acme",
			Experiences: []domain.Experience{
				{Company: "Acme Corp", Title: "Director", StartsAt: ym(2012, 1), EndsAt: ym(2022, 6)},
			},
		}
		assert.True(t, Evaluate(p, domain.FilterPast, "Acme", "Director", now))
	})

	t.Run("role ended outside the five year window", func(t *testing.T) {
		p := &domain.ProfilePayload{
			Headline: "Former Director at Acme",
			Experiences: []domain.Experience{
				{Company: "Acme Corp", Title: "Director", StartsAt: ym(2007, 1), EndsAt: ym(2017, 1)},
			},
		}
		assert.False(t, Evaluate(p, domain.FilterPast, "Acme", "Director", now))
	})

	t.Run("under ten years tenure", func(t *testing.T) {
		p := &domain.ProfilePayload{
			Headline: "Former Director at Acme",
			Experiences: []domain.Experience{
				{Company: "Acme Corp", Title: "Director", StartsAt: ym(2016, 1), EndsAt: ym(2022, 6)},
			},
		}
		assert.False(t, Evaluate(p, domain.FilterPast, "Acme", "Director", now))
	})

	t.Run("non-senior role at the company", func(t *testing.T) {
		p := &domain.ProfilePayload{
			Headline: "Director of Something Else",
			Experiences: []domain.Experience{
				{Company: "Acme Corp", Title: "Engineer", StartsAt: ym(2012, 1), EndsAt: ym(2022, 6)},
			},
		}
		assert.False(t, Evaluate(p, domain.FilterPast, "Acme", "Engineer", now))
	})
}

func TestEvaluate_AllFilter(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("ongoing role takes the current branch", func(t *testing.T) {
		p := &domain.ProfilePayload{
			Headline: "Director of Engineering",
			Experiences: []domain.Experience{
				{Company: "Acme", Title: "Director", StartsAt: ym(2017, 1)},
			},
		}
		assert.True(t, Evaluate(p, domain.FilterAll, "Acme", "Director", now))
	})

	t.Run("no ongoing role takes the past branch", func(t *testing.T) {
		p := &domain.ProfilePayload{
			Headline: "Former Director at Acme",
			Experiences: []domain.Experience{
				{Company: "Acme Corp", Title: "Director", StartsAt: ym(2012, 1), EndsAt: ym(2022, 6)},
			},
		}
		assert.True(t, Evaluate(p, domain.FilterAll, "Acme", "Director", now))
	})

	t.Run("seven years without ongoing role fails the past branch", func(t *testing.T) {
		p := &domain.ProfilePayload{
			Headline: "Former Director at Acme",
			Experiences: []domain.Experience{
				{Company: "Acme Corp", Title: "Director", StartsAt: ym(2015, 1), EndsAt: ym(2022, 6)},
			},
		}
		assert.False(t, Evaluate(p, domain.FilterAll, "Acme", "Director", now))
	})
}

func TestCompanyMatches(t *testing.T) {
	assert.True(t, companyMatches("Acme Corp", "Acme"))
	assert.True(t, companyMatches("Acme", "Acme Corp"))
	assert.True(t, companyMatches("  acme corp  ", "ACME CORP"))
	assert.False(t, companyMatches("Globex", "Acme"))
	assert.False(t, companyMatches("", "Acme"))
	assert.False(t, companyMatches("Acme", ""))
}
