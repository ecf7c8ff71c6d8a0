package services

import "errors"

var (
	ErrUserNotFound         = errors.New("user does not exist")
	ErrWrongPassword        = errors.New("wrong password")
	ErrOldPasswordIncorrect = errors.New("old password is incorrect")
	ErrUserExists           = errors.New("username already exists")
	ErrUserOwnsProjects     = errors.New("user still owns projects")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrForbidden            = errors.New("permission denied")

	ErrProjectNotFound  = errors.New("project not found")
	ErrProjectExists    = errors.New("project key already exists")
	ErrOwnerNotFound    = errors.New("owner does not exist")
	ErrModuleNotFound   = errors.New("module not found")
	ErrFeatureNotFound  = errors.New("feature not found")
	ErrDuplicateName    = errors.New("duplicate name")
	ErrIssueNotFound    = errors.New("issue not found")
	ErrDuplicateIssueID = errors.New("duplicate issue id")

	ErrNotificationNotFound = errors.New("notification not found")
)
