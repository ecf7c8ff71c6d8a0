package models

// DateLayout is the wire layout of ProjectInfo.Date.
const DateLayout = "2006-01-02"

type ProjectInfo struct {
	Key           string `json:"key" bson:"key" yaml:"key" validate:"required"`
	Name          string `json:"name" bson:"name" yaml:"name" validate:"required"`
	Description   string `json:"description" bson:"description" yaml:"description"`
	OwnerUsername string `json:"ownerUsername" bson:"ownerUsername" yaml:"ownerUsername" validate:"required"`
	Date          string `json:"date" bson:"date" yaml:"date" validate:"required,datetime=2006-01-02"`
	NumDevelopers int    `json:"numDevelopers" bson:"numDevelopers" yaml:"numDevelopers" validate:"min=0"`
	NumFeatures   int    `json:"numFeatures" bson:"numFeatures" yaml:"numFeatures" validate:"min=0"`
	NumIssues     int    `json:"numIssues" bson:"numIssues" yaml:"numIssues" validate:"min=0"`
}

type ProjectList struct {
	Projects []ProjectInfo `json:"projects" validate:"dive"`
}

// CreateProjectReq is the body of both create and update; the key travels
// in the path.
type CreateProjectReq struct {
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	OwnerUsername string `json:"ownerUsername" validate:"required"`
}

type FeatureInfo struct {
	Name        string  `json:"name" bson:"name" yaml:"name" validate:"required"`
	DevHours    float64 `json:"devHours" bson:"devHours" yaml:"devHours" validate:"min=0"`
	DevUsername string  `json:"devUsername" bson:"devUsername" yaml:"devUsername"`
}

type ModuleInfo struct {
	Name     string        `json:"name" bson:"name" yaml:"name" validate:"required"`
	Features []FeatureInfo `json:"features" bson:"features" yaml:"features" validate:"dive"`
}

type ModuleList struct {
	ProjectKey string       `json:"projectKey,omitempty"`
	Modules    []ModuleInfo `json:"modules" validate:"dive"`
}

// Counters derives the project aggregates from its modules and issues.
// Unassigned features (empty devUsername) do not count as developers.
func Counters(modules []ModuleInfo, issues []IssueInfo) (numDevelopers, numFeatures, numIssues int) {
	developers := make(map[string]struct{})
	for _, module := range modules {
		for _, feature := range module.Features {
			numFeatures++
			if feature.DevUsername != "" {
				developers[feature.DevUsername] = struct{}{}
			}
		}
	}
	return len(developers), numFeatures, len(issues)
}
