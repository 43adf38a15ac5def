package profiles

type Organization struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	IsAddSchool bool   `json:"isAddSchool"`
}

type Class struct {
	ClassID   int    `json:"classId"`
	ClassName string `json:"className"`
}

// OrganizationMembership is a profile's enrolment or employment at one school.
type OrganizationMembership struct {
	Organization Organization `json:"organization"`
	IsActive     bool         `json:"isActive"`
	Classes      []Class      `json:"classes"`
}

// UserProfile is an account reachable under an access token. Parents list the
// profiles of their children, which have the same shape.
type UserProfile struct {
	ID            int                      `json:"id"`
	FirstName     string                   `json:"firstName"`
	NickName      string                   `json:"nickName"`
	LoginName     string                   `json:"loginName"`
	IsParent      bool                     `json:"isParent"`
	IsStaff       bool                     `json:"isStaff"`
	IsStudent     bool                     `json:"isStudent"`
	Organizations []OrganizationMembership `json:"organizations"`
	Children      []UserProfile            `json:"children,omitempty"`
}

// Clone returns a deep copy of u.
func (u UserProfile) Clone() UserProfile {
	c := u
	if u.Organizations != nil {
		c.Organizations = make([]OrganizationMembership, len(u.Organizations))
		for i, org := range u.Organizations {
			c.Organizations[i] = org
			if org.Classes != nil {
				c.Organizations[i].Classes = append([]Class(nil), org.Classes...)
			}
		}
	}
	if u.Children != nil {
		c.Children = CloneAll(u.Children)
	}
	return c
}

// ActiveOrganizations returns the memberships still flagged active.
func (u UserProfile) ActiveOrganizations() []OrganizationMembership {
	var active []OrganizationMembership
	for _, org := range u.Organizations {
		if org.IsActive {
			active = append(active, org)
		}
	}
	return active
}

// CloneAll deep copies a profile list, preserving nil.
func CloneAll(users []UserProfile) []UserProfile {
	if users == nil {
		return nil
	}
	c := make([]UserProfile, len(users))
	for i, u := range users {
		c[i] = u.Clone()
	}
	return c
}

// Find looks for id among users and, depth first, their children.
func Find(users []UserProfile, id int) (UserProfile, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
		if found, ok := Find(u.Children, id); ok {
			return found, true
		}
	}
	return UserProfile{}, false
}

// Contains reports whether id is any profile in the tree.
func Contains(users []UserProfile, id int) bool {
	_, ok := Find(users, id)
	return ok
}

// Sanitize drops children that repeat an id already on their ancestor path, which
// keeps the tree finite without limiting its depth.
func Sanitize(users []UserProfile) []UserProfile {
	return sanitize(users, map[int]bool{})
}

func sanitize(users []UserProfile, ancestors map[int]bool) []UserProfile {
	if users == nil {
		return nil
	}
	out := make([]UserProfile, 0, len(users))
	for _, u := range users {
		if ancestors[u.ID] {
			continue
		}
		c := u.Clone()
		if len(u.Children) > 0 {
			ancestors[u.ID] = true
			c.Children = sanitize(u.Children, ancestors)
			delete(ancestors, u.ID)
		}
		out = append(out, c)
	}
	return out
}
