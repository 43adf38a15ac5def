package publish

import (
	"time"

	"github.com/jrsteele09/sgo-connect/profiles"
	"github.com/jrsteele09/sgo-connect/tokenstore"
)

type class struct {
	ClassID   int    `json:"class_id"`
	ClassName string `json:"class_name"`
}

type organization struct {
	OrganizationID int    `json:"organization_id"`
	IsAddSchool    bool   `json:"is_add_school"`
	Name           string `json:"name"`
}

type organizationInfo struct {
	IsActive     bool         `json:"is_active"`
	Classes      []class      `json:"classes"`
	Organization organization `json:"organization"`
}

type child struct {
	ChildID       int                `json:"child_id"`
	FirstName     string             `json:"first_name"`
	NickName      string             `json:"nick_name"`
	LoginName     string             `json:"login_name"`
	IsParent      bool               `json:"is_parent"`
	IsStaff       bool               `json:"is_staff"`
	IsStudent     bool               `json:"is_student"`
	Organizations []organizationInfo `json:"organizations"`
}

type user struct {
	UserID        int                `json:"user_id"`
	FirstName     string             `json:"first_name"`
	NickName      string             `json:"nick_name"`
	LoginName     string             `json:"login_name"`
	IsParent      bool               `json:"is_parent"`
	IsStaff       bool               `json:"is_staff"`
	IsStudent     bool               `json:"is_student"`
	Organizations []organizationInfo `json:"organizations"`
	Children      []child            `json:"children,omitempty"`
}

type tokenPayload struct {
	RefreshToken  string    `json:"refresh_token"`
	TimeToRefresh time.Time `json:"time_to_refresh"`
	Users         []user    `json:"users"`
}

// TokenID is the backend's handle for a published token.
type TokenID struct {
	TokenID             string    `json:"token_id"`
	ExpiresAt           time.Time `json:"expires_at"`
	TokenExpiresSeconds int       `json:"token_expires_seconds"`
}

func toOrganizations(in []profiles.OrganizationMembership) []organizationInfo {
	out := make([]organizationInfo, 0, len(in))
	for _, m := range in {
		classes := make([]class, 0, len(m.Classes))
		for _, c := range m.Classes {
			classes = append(classes, class{ClassID: c.ClassID, ClassName: c.ClassName})
		}
		out = append(out, organizationInfo{
			IsActive: m.IsActive,
			Classes:  classes,
			Organization: organization{
				OrganizationID: m.Organization.ID,
				IsAddSchool:    m.Organization.IsAddSchool,
				Name:           m.Organization.Name,
			},
		})
	}
	return out
}

// toUser flattens a profile's descendants into one children list, which is all the
// backend schema can hold.
func toUser(p profiles.UserProfile) user {
	u := user{
		UserID:        p.ID,
		FirstName:     p.FirstName,
		NickName:      p.NickName,
		LoginName:     p.LoginName,
		IsParent:      p.IsParent,
		IsStaff:       p.IsStaff,
		IsStudent:     p.IsStudent,
		Organizations: toOrganizations(p.Organizations),
	}
	var walk func([]profiles.UserProfile)
	walk = func(children []profiles.UserProfile) {
		for _, c := range children {
			u.Children = append(u.Children, child{
				ChildID:       c.ID,
				FirstName:     c.FirstName,
				NickName:      c.NickName,
				LoginName:     c.LoginName,
				IsParent:      c.IsParent,
				IsStaff:       c.IsStaff,
				IsStudent:     c.IsStudent,
				Organizations: toOrganizations(c.Organizations),
			})
			walk(c.Children)
		}
	}
	walk(p.Children)
	return u
}

func newPayload(record tokenstore.TokenRecord, userID *int) (tokenPayload, bool) {
	p := tokenPayload{
		RefreshToken:  record.RefreshToken,
		TimeToRefresh: record.ExpiresAt.UTC(),
		Users:         []user{},
	}
	if userID != nil {
		found, ok := profiles.Find(record.Users, *userID)
		if !ok {
			return tokenPayload{}, false
		}
		p.Users = append(p.Users, toUser(found))
		return p, true
	}
	for _, u := range record.Users {
		p.Users = append(p.Users, toUser(u))
	}
	return p, true
}
