package repositories

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yyhhenry/sdu--neu-bug/models"
)

//go:embed seed/default.yaml
var defaultSeed []byte

type SeedUser struct {
	models.UserInfo `yaml:",inline"`
	Password        string `yaml:"password"`
}

type SeedProject struct {
	models.ProjectInfo `yaml:",inline"`
	Modules            []models.ModuleInfo `yaml:"modules"`
	Issues             []models.IssueInfo  `yaml:"issues"`
}

type Seed struct {
	Users    []SeedUser    `yaml:"users"`
	Projects []SeedProject `yaml:"projects"`
}

// LoadSeed reads a YAML seed file; an empty path selects the built-in demo
// data.
func LoadSeed(path string) (*Seed, error) {
	data := defaultSeed
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("reading seed file: %w", err)
		}
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}
	return &seed, nil
}

// Apply inserts the seed into the repositories. Entries that already exist
// are left untouched so a persistent store can be reseeded on every start.
// Project counters are derived from the seeded modules and issues.
func (s *Seed) Apply(ctx context.Context, users UserRepository, projects ProjectRepository, hash func(string) (string, error)) error {
	for _, u := range s.Users {
		if err := models.Validate(u.UserInfo); err != nil {
			return fmt.Errorf("seed user %q: %w", u.Username, err)
		}
		passwordHash, err := hash(u.Password)
		if err != nil {
			return fmt.Errorf("seed user %q: %w", u.Username, err)
		}
		err = users.InsertUser(ctx, models.Account{UserInfo: u.UserInfo, PasswordHash: passwordHash})
		if err != nil && !errors.Is(err, ErrDuplicate) {
			return err
		}
	}

	for _, p := range s.Projects {
		project := p.ProjectInfo
		if p.Modules == nil {
			p.Modules = []models.ModuleInfo{}
		}
		if p.Issues == nil {
			p.Issues = []models.IssueInfo{}
		}
		project.NumDevelopers, project.NumFeatures, project.NumIssues = models.Counters(p.Modules, p.Issues)
		if err := models.Validate(project); err != nil {
			return fmt.Errorf("seed project %q: %w", project.Key, err)
		}
		if err := models.Validate(models.ModuleList{Modules: p.Modules}); err != nil {
			return fmt.Errorf("seed project %q modules: %w", project.Key, err)
		}
		if err := models.Validate(models.IssueList{Issues: p.Issues}); err != nil {
			return fmt.Errorf("seed project %q issues: %w", project.Key, err)
		}
		if _, err := users.FindUser(ctx, project.OwnerUsername); err != nil {
			return fmt.Errorf("seed project %q owner: %w", project.Key, err)
		}

		err := projects.InsertProject(ctx, project)
		if errors.Is(err, ErrDuplicate) {
			continue
		}
		if err != nil {
			return err
		}
		if err := projects.SetModules(ctx, project.Key, p.Modules); err != nil {
			return err
		}
		if err := projects.SetIssues(ctx, project.Key, p.Issues); err != nil {
			return err
		}
	}
	return nil
}
