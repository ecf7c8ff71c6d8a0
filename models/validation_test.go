package models

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUserInfo(t *testing.T) {
	info, err := Decode[UserInfo]([]byte(`{"username":"admin","fullName":"Admin","role":"admin","email":"admin@example.com"}`))
	require.NoError(t, err)
	want := UserInfo{Username: "admin", FullName: "Admin", Role: RoleAdmin, Email: "admin@example.com"}
	if diff := cmp.Diff(want, info); diff != "" {
		t.Fatalf("decoded user mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsBadShapes(t *testing.T) {
	cases := map[string]string{
		"unknown role":  `{"username":"a","fullName":"","role":"root","email":"a@b.c"}`,
		"unknown field": `{"username":"a","fullName":"","role":"user","email":"a@b.c","extra":1}`,
		"wrong type":    `{"username":1,"fullName":"","role":"user","email":"a@b.c"}`,
		"missing name":  `{"fullName":"","role":"user","email":"a@b.c"}`,
		"not json":      `<html>`,
		"trailing data": `{"username":"a","fullName":"","role":"user","email":"a@b.c"} {}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode[UserInfo]([]byte(body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPayload))
		})
	}
}

func TestDecodeNestedLists(t *testing.T) {
	_, err := Decode[ModuleList]([]byte(`{"modules":[{"name":"home","features":[{"name":"nav","devHours":-1,"devUsername":""}]}]}`))
	require.ErrorIs(t, err, ErrInvalidPayload)

	list, err := Decode[ModuleList]([]byte(`{"projectKey":"blog","modules":[{"name":"home","features":[]}]}`))
	require.NoError(t, err)
	assert.Equal(t, "blog", list.ProjectKey)
	require.Len(t, list.Modules, 1)
}

func TestDecodeProjectDate(t *testing.T) {
	_, err := Decode[CreateProjectReq]([]byte(`{"name":"n","description":"","date":"25/07/2016","ownerUsername":"admin"}`))
	require.ErrorIs(t, err, ErrInvalidPayload)

	req, err := Decode[CreateProjectReq]([]byte(`{"name":"n","description":"","date":"2016-07-25","ownerUsername":"admin"}`))
	require.NoError(t, err)
	assert.Equal(t, "2016-07-25", req.Date)
}

func TestDecodeOrFallsBack(t *testing.T) {
	fallback := &AccountStorage{Username: "nobody"}
	got := DecodeOr[*AccountStorage]([]byte(`{"username":"x"}`), fallback)
	assert.Same(t, fallback, got)

	got = DecodeOr[*AccountStorage]([]byte(`null`), fallback)
	assert.Nil(t, got)
}

func TestAsMessage(t *testing.T) {
	msg, ok := AsMessage([]byte(`{"type":"error","msg":"user does not exist"}`))
	require.True(t, ok)
	assert.Equal(t, MsgError, msg.Type)
	var apiErr *APIError
	require.ErrorAs(t, msg.Err(), &apiErr)
	assert.Equal(t, "user does not exist", apiErr.Msg)

	msg, ok = AsMessage([]byte(`{"type":"success","msg":"done"}`))
	require.True(t, ok)
	assert.NoError(t, msg.Err())

	for _, body := range []string{
		`{"type":"warning","msg":"x"}`,
		`{"type":"info"}`,
		`{"username":"admin","fullName":"","role":"admin","email":"a@b.c"}`,
		`[]`,
	} {
		_, ok := AsMessage([]byte(body))
		assert.False(t, ok, body)
	}
}

func TestSearchIssueReqRoundTrip(t *testing.T) {
	req := SearchIssueReq{Title: "nav", Level: LevelMinor}
	q := req.Values()
	assert.Equal(t, url.Values{"title": {"nav"}, "level": {"minor"}}, q)

	parsed, err := ParseSearchIssueReq(q)
	require.NoError(t, err)
	assert.Equal(t, req, parsed)

	_, err = ParseSearchIssueReq(url.Values{"priority": {"1"}})
	require.ErrorIs(t, err, ErrInvalidPayload)

	_, err = ParseSearchIssueReq(url.Values{"status": {"pending"}})
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestSearchIssueMatch(t *testing.T) {
	issue := IssueInfo{
		ID: "2", ModuleName: "Home", FeatureName: "Navigation bar", Title: "Navigation link broken",
		Level: LevelMinor, Status: StatusOpen, Tag: TagCannotReproduce, CreatorUsername: "userC1",
	}
	assert.True(t, SearchIssueReq{Title: "LINK"}.Match(issue))
	assert.True(t, SearchIssueReq{CreatorUsername: "userc"}.Match(issue))
	assert.False(t, SearchIssueReq{DevUsername: "student"}.Match(issue), "missing optional field never matches")
	assert.False(t, SearchIssueReq{Level: "mino"}.Match(issue), "enums match exactly")
	assert.True(t, SearchIssueReq{Status: StatusOpen, Tag: TagCannotReproduce}.Match(issue))
	assert.True(t, SearchIssueReq{}.Match(issue))
}

func TestCounters(t *testing.T) {
	modules := []ModuleInfo{
		{Name: "Home", Features: []FeatureInfo{
			{Name: "Navigation bar", DevHours: 2, DevUsername: "student"},
			{Name: "Ad bar", DevHours: 1, DevUsername: "userC1"},
			{Name: "Footer", DevHours: 1},
		}},
		{Name: "Login", Features: []FeatureInfo{{Name: "Form", DevUsername: "student"}}},
	}
	devs, features, issues := Counters(modules, []IssueInfo{{ID: "1"}})
	assert.Equal(t, 2, devs)
	assert.Equal(t, 4, features)
	assert.Equal(t, 1, issues)
}

func TestPrivilegeName(t *testing.T) {
	admin, user := RoleAdmin, RoleUser
	assert.Equal(t, "Not logged in", PrivilegeName(nil))
	assert.Equal(t, "Administrator", PrivilegeName(&admin))
	assert.Equal(t, "User", PrivilegeName(&user))
}
