package models

import (
	"fmt"
	"net/url"
	"strings"
)

// TimeLayout is the wire layout of issue timestamps.
const TimeLayout = "2006-01-02 15:04:05"

type IssueLevel string

const (
	LevelTrivial  IssueLevel = "trivial"
	LevelMinor    IssueLevel = "minor"
	LevelNormal   IssueLevel = "normal"
	LevelUrgent   IssueLevel = "urgent"
	LevelCritical IssueLevel = "critical"
)

type IssueStatus string

const (
	StatusOpen   IssueStatus = "open"
	StatusClosed IssueStatus = "closed"
	StatusSolved IssueStatus = "solved"
)

type IssueTag string

const (
	TagUnsolved        IssueTag = "unsolved"
	TagSolved          IssueTag = "solved"
	TagNotABug         IssueTag = "not-a-bug"
	TagCannotReproduce IssueTag = "cannot-reproduce"
	TagDuplicate       IssueTag = "duplicate"
)

type IssueInfo struct {
	ID              string      `json:"id" bson:"id" yaml:"id"`
	ModuleName      string      `json:"moduleName" bson:"moduleName" yaml:"moduleName" validate:"required"`
	FeatureName     string      `json:"featureName" bson:"featureName" yaml:"featureName" validate:"required"`
	Title           string      `json:"title" bson:"title" yaml:"title" validate:"required"`
	Description     string      `json:"description" bson:"description" yaml:"description"`
	Level           IssueLevel  `json:"level" bson:"level" yaml:"level" validate:"required,oneof=trivial minor normal urgent critical"`
	Status          IssueStatus `json:"status" bson:"status" yaml:"status" validate:"omitempty,oneof=open closed solved"`
	Tag             IssueTag    `json:"tag,omitempty" bson:"tag,omitempty" yaml:"tag,omitempty" validate:"omitempty,oneof=unsolved solved not-a-bug cannot-reproduce duplicate"`
	CreatorUsername string      `json:"creatorUsername" bson:"creatorUsername" yaml:"creatorUsername"`
	DevUsername     string      `json:"devUsername,omitempty" bson:"devUsername,omitempty" yaml:"devUsername,omitempty"`
	CreateTime      string      `json:"createTime" bson:"createTime" yaml:"createTime" validate:"omitempty,datetime=2006-01-02 15:04:05"`
	SolveTime       string      `json:"solveTime,omitempty" bson:"solveTime,omitempty" yaml:"solveTime,omitempty" validate:"omitempty,datetime=2006-01-02 15:04:05"`
	Feedback        string      `json:"feedback,omitempty" bson:"feedback,omitempty" yaml:"feedback,omitempty"`
}

type IssueList struct {
	Issues []IssueInfo `json:"issues" validate:"dive"`
}

// SearchIssueReq filters issues. Text fields match as case-insensitive
// substrings, enum fields match exactly; empty fields are ignored.
type SearchIssueReq struct {
	Title           string      `json:"title,omitempty"`
	ModuleName      string      `json:"moduleName,omitempty"`
	FeatureName     string      `json:"featureName,omitempty"`
	Level           IssueLevel  `json:"level,omitempty" validate:"omitempty,oneof=trivial minor normal urgent critical"`
	CreatorUsername string      `json:"creatorUsername,omitempty"`
	DevUsername     string      `json:"devUsername,omitempty"`
	Status          IssueStatus `json:"status,omitempty" validate:"omitempty,oneof=open closed solved"`
	Tag             IssueTag    `json:"tag,omitempty" validate:"omitempty,oneof=unsolved solved not-a-bug cannot-reproduce duplicate"`
}

func (r SearchIssueReq) Values() url.Values {
	q := url.Values{}
	setIf(q, "title", r.Title)
	setIf(q, "moduleName", r.ModuleName)
	setIf(q, "featureName", r.FeatureName)
	setIf(q, "level", string(r.Level))
	setIf(q, "creatorUsername", r.CreatorUsername)
	setIf(q, "devUsername", r.DevUsername)
	setIf(q, "status", string(r.Status))
	setIf(q, "tag", string(r.Tag))
	return q
}

func ParseSearchIssueReq(q url.Values) (SearchIssueReq, error) {
	var req SearchIssueReq
	for key := range q {
		value := q.Get(key)
		switch key {
		case "title":
			req.Title = value
		case "moduleName":
			req.ModuleName = value
		case "featureName":
			req.FeatureName = value
		case "level":
			req.Level = IssueLevel(value)
		case "creatorUsername":
			req.CreatorUsername = value
		case "devUsername":
			req.DevUsername = value
		case "status":
			req.Status = IssueStatus(value)
		case "tag":
			req.Tag = IssueTag(value)
		default:
			return SearchIssueReq{}, fmt.Errorf("%w: unsupported search field %q", ErrInvalidPayload, key)
		}
	}
	if err := Validate(req); err != nil {
		return SearchIssueReq{}, err
	}
	return req, nil
}

// Match reports whether issue passes every non-empty filter. An issue that
// lacks a searched optional field never matches.
func (r SearchIssueReq) Match(issue IssueInfo) bool {
	return containsFold(issue.Title, r.Title) &&
		containsFold(issue.ModuleName, r.ModuleName) &&
		containsFold(issue.FeatureName, r.FeatureName) &&
		containsFold(issue.CreatorUsername, r.CreatorUsername) &&
		containsFold(issue.DevUsername, r.DevUsername) &&
		(r.Level == "" || issue.Level == r.Level) &&
		(r.Status == "" || issue.Status == r.Status) &&
		(r.Tag == "" || issue.Tag == r.Tag)
}

func containsFold(field, filter string) bool {
	if filter == "" {
		return true
	}
	if field == "" {
		return false
	}
	return strings.Contains(strings.ToLower(field), strings.ToLower(filter))
}
