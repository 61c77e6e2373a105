package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

const (
	PostingIDField      = "ID"
	PostingCompanyField = "Company"
)

const (
	BandStrong = "strong"
	BandFair   = "fair"
	BandWeak   = "weak"
)

type Jobs struct {
	Items []*Posting `json:"items"`
}

// Posting is a single job listing. Company, Location and Salary are descriptive only.
type Posting struct {
	ID          string   `mapstructure:"id" json:"id,omitempty"`
	Title       string   `mapstructure:"title" json:"title"`
	Company     string   `mapstructure:"company" json:"company,omitempty"`
	Location    string   `mapstructure:"location" json:"location,omitempty"`
	Salary      string   `mapstructure:"salary" json:"salary,omitempty"`
	Skills      []string `mapstructure:"skills" json:"skills"`
	Description string   `mapstructure:"description" json:"description,omitempty"`
	URL         string   `mapstructure:"url" json:"url,omitempty"`
	PostedAt    string   `mapstructure:"posted-at" json:"posted_at,omitempty"`
	Match       int      `mapstructure:"-" json:"match"`
}

var salaryNumber = regexp.MustCompile(`\d+(?:[.,]\d+)*`)

func (p *Posting) GetStringField(name string) string {
	switch name {
	case PostingIDField:
		return p.ID
	case PostingCompanyField:
		return p.Company
	default:
		return ""
	}
}

// SalaryMax returns the largest number found in the salary text, or 0.
func (p *Posting) SalaryMax() float64 {
	highest := 0.0
	for _, raw := range salaryNumber.FindAllString(p.Salary, -1) {
		raw = strings.ReplaceAll(raw, ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if v > highest {
			highest = v
		}
	}
	return highest
}

// MatchBand classifies a match percentage.
func MatchBand(match int) string {
	switch {
	case match >= 70:
		return BandStrong
	case match >= 40:
		return BandFair
	default:
		return BandWeak
	}
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

func (j *Jobs) FindByID(id string) *Posting {
	for _, p := range j.Items {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (j *Jobs) IDs() []string {
	ids := make([]string, 0, len(j.Items))
	for _, p := range j.Items {
		ids = append(ids, p.ID)
	}
	return ids
}

// Exclude removes every posting whose field equals one of targets, ignoring case,
// and returns the removed IDs. Order of the remaining postings is preserved.
func (j *Jobs) Exclude(name string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	var excluded []string
	j.Items = slices.DeleteFunc(j.Items, func(p *Posting) bool {
		value := p.GetStringField(name)
		for _, target := range targets {
			if strings.EqualFold(strings.TrimSpace(target), value) {
				excluded = append(excluded, p.ID)
				return true
			}
		}
		return false
	})

	return excluded
}

// Keep retains only the postings for which keep returns true and returns the dropped IDs.
func (j *Jobs) Keep(keep func(p *Posting) bool) []string {
	var dropped []string
	j.Items = slices.DeleteFunc(j.Items, func(p *Posting) bool {
		if keep(p) {
			return false
		}
		dropped = append(dropped, p.ID)
		return true
	})
	return dropped
}

// ReportByCompany groups postings under "Company" keys for display.
func (j *Jobs) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, p := range j.Items {
		key := p.Company
		if key == "" {
			key = "unknown company"
		}
		report[key] = append(report[key], map[string]string{
			"title":    p.Title,
			"url":      p.URL,
			"location": p.Location,
			"salary":   p.Salary,
			"skills":   strings.Join(p.Skills, ", "),
			"match":    fmt.Sprintf("%d%%", p.Match),
			"band":     MatchBand(p.Match),
		})
	}
	return report
}

func (j *Jobs) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "jobs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(j); err != nil {
		return "", err
	}
	return file.Name(), nil
}
