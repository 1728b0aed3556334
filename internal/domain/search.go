package domain

import (
	"errors"
	"strconv"
	"time"
)

var (
	ErrAnalyticsNotFound = errors.New("analytics snapshot not found")
	ErrCacheMiss         = errors.New("validation cache miss")
)

// ValidationResult is the normalized provider answer for one number.
// Empty strings mean the provider did not supply the field.
type ValidationResult struct {
	Valid               bool   `json:"valid"`
	Number              string `json:"number"`
	LocalFormat         string `json:"local_format,omitempty"`
	InternationalFormat string `json:"international_format,omitempty"`
	CountryPrefix       string `json:"country_prefix,omitempty"`
	CountryCode         string `json:"country_code,omitempty"`
	CountryName         string `json:"country_name,omitempty"`
	Location            string `json:"location,omitempty"`
	Carrier             string `json:"carrier,omitempty"`
	LineType            string `json:"line_type,omitempty"`
}

// SafeFailure is substituted for the provider's answer whenever the provider
// could not be reached or reported an error.
func SafeFailure(phoneNumber, countryCode string) ValidationResult {
	return ValidationResult{
		Valid:       false,
		Number:      phoneNumber,
		CountryCode: countryCode,
	}
}

// CacheKey identifies a lookup exactly as submitted; no normalization is applied.
type CacheKey struct {
	CountryCode string
	PhoneNumber string
}

// String length-prefixes the country code so distinct pairs never share a string form.
func (k CacheKey) String() string {
	return strconv.Itoa(len(k.CountryCode)) + ":" + k.CountryCode + ":" + k.PhoneNumber
}

type Search struct {
	ID          string
	UserID      string
	PhoneNumber string
	CountryCode string
	Country     *string // nil when the provider returned no data
	Location    *string
	Carrier     *string
	LineType    *string
	Valid       bool
	AIInsight   string
	CreatedAt   time.Time
}

// NewSearch builds the record persisted for one validation request.
func NewSearch(userID, phoneNumber, countryCode string, res ValidationResult, insight string) *Search {
	return &Search{
		UserID:      userID,
		PhoneNumber: phoneNumber,
		CountryCode: countryCode,
		Country:     optional(res.CountryName),
		Location:    optional(res.Location),
		Carrier:     optional(res.Carrier),
		LineType:    optional(res.LineType),
		Valid:       res.Valid,
		AIInsight:   insight,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Analytics is the running per-user snapshot. ValidNumbersCount and
// RecentSearches never exceed TotalSearches.
type Analytics struct {
	UserID            string
	TotalSearches     int
	RecentSearches    int
	ValidNumbersCount int
	UpdatedAt         time.Time
}

// Record applies the outcome of one completed search.
func (a *Analytics) Record(valid bool, now time.Time) {
	a.TotalSearches++
	a.RecentSearches++
	if valid {
		a.ValidNumbersCount++
	}
	a.UpdatedAt = now
}

// ValidationRate is the share of valid results as a whole percent, rounded half up.
func (a *Analytics) ValidationRate() int {
	if a == nil || a.TotalSearches <= 0 {
		return 0
	}
	return (200*a.ValidNumbersCount + a.TotalSearches) / (2 * a.TotalSearches)
}
