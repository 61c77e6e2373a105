// Package jobs holds job postings and the helpers used to browse them.
package jobs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// maxExtractedSkills caps ExtractSkills.
const maxExtractedSkills = 6

// commonSkills is the vocabulary used to tag postings that ship without a skill list.
var commonSkills = []string{
	"JavaScript", "TypeScript", "React", "Angular", "Vue", "Node.js", "Python",
	"Java", "C++", "C#", ".NET", "Go", "Rust", "Ruby", "PHP", "Swift", "Kotlin",
	"SQL", "NoSQL", "MongoDB", "PostgreSQL", "MySQL", "Redis", "AWS", "Azure",
	"GCP", "Docker", "Kubernetes", "CI/CD", "Git", "REST", "GraphQL", "API",
	"HTML", "CSS", "Sass", "Tailwind", "Bootstrap", "Redux", "Next.js", "Express",
	"Django", "Flask", "Spring", "Machine Learning", "AI", "Data Science",
	"Pandas", "TensorFlow", "PyTorch", "Agile", "Scrum", "JIRA", "Linux",
	"Figma", "UI/UX", "Mobile", "iOS", "Android", "React Native", "Flutter",
}

type file struct {
	Jobs []*Posting `mapstructure:"jobs"`
}

// Load reads postings from a yaml, json or toml file with a top level "jobs" list.
// Values are weakly typed: numeric ids become strings and skills may be a comma
// separated string. Postings without an id get their 1-based position; postings
// without skills get skills extracted from the description.
func Load(path string) (*Jobs, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading jobs %q: %w", path, err)
	}

	var f file
	cfg := &mapstructure.DecoderConfig{
		Result:           &f,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decoding jobs %q: %w", path, err)
	}

	list := &Jobs{Items: make([]*Posting, 0, len(f.Jobs))}
	for i, p := range f.Jobs {
		if p == nil {
			continue
		}
		if strings.TrimSpace(p.ID) == "" {
			p.ID = strconv.Itoa(i + 1)
		}
		p.Skills = trimSkills(p.Skills)
		if len(p.Skills) == 0 {
			p.Skills = ExtractSkills(p.Description)
		}
		list.Items = append(list.Items, p)
	}

	return list, nil
}

func trimSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ExtractSkills returns up to six known skills mentioned in the description,
// in vocabulary order. Matching is a case-insensitive substring test.
func ExtractSkills(description string) []string {
	desc := strings.ToLower(description)
	skills := make([]string, 0, maxExtractedSkills)
	if strings.TrimSpace(desc) == "" {
		return skills
	}

	for _, s := range commonSkills {
		if strings.Contains(desc, strings.ToLower(s)) {
			skills = append(skills, s)
			if len(skills) == maxExtractedSkills {
				break
			}
		}
	}
	return skills
}
