// internal/aggregate/aggregate.go - distributional statistics over stored
// records
//
// Every computation tolerates absent fields: a record missing a salary or
// rating simply does not contribute to that distribution.
package aggregate

import (
	"context"
	"fmt"
	"sort"

	"github.com/listlift/listlift/internal/store"
	"github.com/listlift/listlift/pkg/types"
)

// CountEntry is one bucket of a categorical distribution
type CountEntry struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// NumberSummary describes a numeric distribution
type NumberSummary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
}

// JobStats summarizes the stored job offers
type JobStats struct {
	TotalOffers     int            `json:"total_offers"`
	SalariedOffers  int            `json:"salaried_offers"`
	SalaryMin       *NumberSummary `json:"salary_min,omitempty"`
	SalaryMax       *NumberSummary `json:"salary_max,omitempty"`
	ByExperience    []CountEntry   `json:"by_experience"`
	ByEmployment    []CountEntry   `json:"by_employment"`
	ByWorkMode      []CountEntry   `json:"by_work_mode"`
	ByIndustry      []CountEntry   `json:"by_industry"`
	ByPositionLevel []CountEntry   `json:"by_position_level"`
	ByWorkTime      []CountEntry   `json:"by_work_time"`
	TopCities       []CountEntry   `json:"top_cities"`
	TopSkills       []CountEntry   `json:"top_skills"`
	Schedules       []CountEntry   `json:"schedules"`
	AvgMonthlyHours *float64       `json:"avg_monthly_hours,omitempty"`
	ForeignOffers   int            `json:"foreign_offers"`
}

// BookStats summarizes the stored books
type BookStats struct {
	TotalBooks         int            `json:"total_books"`
	PricedBooks        int            `json:"priced_books"`
	Price              *NumberSummary `json:"price,omitempty"`
	AvgRating          *float64       `json:"avg_rating,omitempty"`
	RatingDistribution []CountEntry   `json:"rating_distribution"`
	TopCategories      []CountEntry   `json:"top_categories"`
	TopPublishers      []CountEntry   `json:"top_publishers"`
	TopAuthors         []CountEntry   `json:"top_authors"`
	InStores           int            `json:"in_stores"`
}

// Stats bundles both summaries for the stats endpoint
type Stats struct {
	Jobs  JobStats  `json:"jobs"`
	Books BookStats `json:"books"`
}

const topLimit = 10

// Aggregator computes statistics from a record store
type Aggregator struct {
	store store.RecordStore
}

// New creates an aggregator over the store
func New(s store.RecordStore) *Aggregator {
	return &Aggregator{store: s}
}

// Stats computes job and book summaries in one pass over the store
func (a *Aggregator) Stats(ctx context.Context) (*Stats, error) {
	jobs, err := a.JobStats(ctx)
	if err != nil {
		return nil, err
	}
	books, err := a.BookStats(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{Jobs: *jobs, Books: *books}, nil
}

// JobStats computes the job offer summary
func (a *Aggregator) JobStats(ctx context.Context) (*JobStats, error) {
	records, err := a.store.List(ctx, types.DocumentJobOffer)
	if err != nil {
		return nil, err
	}

	stats := &JobStats{TotalOffers: len(records)}

	experience := map[string]int{}
	employment := map[string]int{}
	workMode := map[string]int{}
	industry := map[string]int{}
	position := map[string]int{}
	workTime := map[string]int{}
	cities := map[string]int{}
	skills := map[string]int{}
	schedules := map[string]int{}

	var salaryMins, salaryMaxes []float64
	var hoursSum float64
	var hoursCount int

	for _, record := range records {
		offer, ok := record.(*types.JobOffer)
		if !ok {
			continue
		}

		if offer.SalaryMin != nil || offer.SalaryMax != nil {
			stats.SalariedOffers++
		}
		if offer.SalaryMin != nil {
			salaryMins = append(salaryMins, *offer.SalaryMin)
		}
		if offer.SalaryMax != nil {
			salaryMaxes = append(salaryMaxes, *offer.SalaryMax)
		}

		countString(experience, offer.ExperienceLevel)
		countString(employment, offer.EmploymentType)
		countString(workMode, offer.WorkMode)
		countString(industry, offer.Industry)
		countString(position, offer.PositionLevel)
		countString(workTime, offer.WorkTime)
		countString(cities, offer.City)
		countString(schedules, offer.WorkSchedule)

		for _, skill := range offer.Skills {
			skills[skill]++
		}
		if offer.MonthlyHours != nil {
			hoursSum += float64(*offer.MonthlyHours)
			hoursCount++
		}
		if offer.ForeignJob != nil && *offer.ForeignJob {
			stats.ForeignOffers++
		}
	}

	stats.SalaryMin = summarize(salaryMins)
	stats.SalaryMax = summarize(salaryMaxes)
	stats.ByExperience = sortedEntries(experience, 0)
	stats.ByEmployment = sortedEntries(employment, 0)
	stats.ByWorkMode = sortedEntries(workMode, 0)
	stats.ByIndustry = sortedEntries(industry, 0)
	stats.ByPositionLevel = sortedEntries(position, 0)
	stats.ByWorkTime = sortedEntries(workTime, 0)
	stats.TopCities = sortedEntries(cities, topLimit)
	stats.TopSkills = sortedEntries(skills, topLimit)
	stats.Schedules = sortedEntries(schedules, 0)
	if hoursCount > 0 {
		avg := hoursSum / float64(hoursCount)
		stats.AvgMonthlyHours = &avg
	}
	return stats, nil
}

// BookStats computes the book summary
func (a *Aggregator) BookStats(ctx context.Context) (*BookStats, error) {
	records, err := a.store.List(ctx, types.DocumentBook)
	if err != nil {
		return nil, err
	}

	stats := &BookStats{TotalBooks: len(records)}

	categories := map[string]int{}
	publishers := map[string]int{}
	authors := map[string]int{}
	ratings := map[string]int{}

	var prices []float64
	var ratingSum float64
	var ratingCount int

	for _, record := range records {
		book, ok := record.(*types.Book)
		if !ok {
			continue
		}

		if book.Price != nil {
			stats.PricedBooks++
			prices = append(prices, *book.Price)
		}
		if book.Rating != nil {
			ratingSum += *book.Rating
			ratingCount++
			ratings[ratingBucket(*book.Rating)]++
		}
		for _, category := range book.Categories {
			countString(categories, &category.Name)
		}
		countString(publishers, book.Publisher)
		for _, author := range book.Authors {
			if author.Name != "" {
				authors[author.Name]++
			}
		}
		if book.InStores != nil && *book.InStores {
			stats.InStores++
		}
	}

	stats.Price = summarize(prices)
	if ratingCount > 0 {
		avg := ratingSum / float64(ratingCount)
		stats.AvgRating = &avg
	}
	stats.RatingDistribution = sortedByValue(ratings)
	stats.TopCategories = sortedEntries(categories, topLimit)
	stats.TopPublishers = sortedEntries(publishers, topLimit)
	stats.TopAuthors = sortedEntries(authors, topLimit)
	return stats, nil
}

func countString(counts map[string]int, value *string) {
	if value != nil && *value != "" {
		counts[*value]++
	}
}

// ratingBucket maps a rating to a half-point interval label
func ratingBucket(rating float64) string {
	lower := float64(int(rating*2)) / 2
	return fmt.Sprintf("%.1f-%.1f", lower, lower+0.5)
}

// summarize computes the distribution summary, nil for an empty sample
func summarize(values []float64) *NumberSummary {
	if len(values) == 0 {
		return nil
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	return &NumberSummary{
		Count:  len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   sum / float64(len(sorted)),
		Median: percentile(sorted, 50),
		P25:    percentile(sorted, 25),
		P75:    percentile(sorted, 75),
	}
}

// percentile uses the nearest-rank method over a sorted sample
func percentile(sorted []float64, p int) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

// sortedEntries orders buckets by count descending, value ascending for
// ties; limit 0 keeps everything
func sortedEntries(counts map[string]int, limit int) []CountEntry {
	entries := make([]CountEntry, 0, len(counts))
	for value, count := range counts {
		entries = append(entries, CountEntry{Value: value, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Value < entries[j].Value
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// sortedByValue orders buckets by label, for stable interval output
func sortedByValue(counts map[string]int) []CountEntry {
	entries := make([]CountEntry, 0, len(counts))
	for value, count := range counts {
		entries = append(entries, CountEntry{Value: value, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Value < entries[j].Value
	})
	return entries
}
