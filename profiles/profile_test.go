package profiles_test

import (
	"testing"

	"github.com/jrsteele09/sgo-connect/profiles"
	"github.com/stretchr/testify/require"
)

func parentWithChild() profiles.UserProfile {
	return profiles.UserProfile{
		ID:        1,
		FirstName: "Anna",
		IsParent:  true,
		Organizations: []profiles.OrganizationMembership{{
			Organization: profiles.Organization{ID: 10, Name: "School 10"},
			IsActive:     true,
			Classes:      []profiles.Class{{ClassID: 5, ClassName: "5A"}},
		}},
		Children: []profiles.UserProfile{{ID: 2, FirstName: "Ivan", IsStudent: true}},
	}
}

func TestUserProfile_CloneIsDeep(t *testing.T) {
	orig := parentWithChild()
	c := orig.Clone()
	require.Equal(t, orig, c)

	c.Organizations[0].Classes[0].ClassName = "changed"
	c.Children[0].FirstName = "changed"
	require.Equal(t, "5A", orig.Organizations[0].Classes[0].ClassName)
	require.Equal(t, "Ivan", orig.Children[0].FirstName)
}

func TestFind(t *testing.T) {
	users := []profiles.UserProfile{parentWithChild(), {ID: 3}}

	u, ok := profiles.Find(users, 2)
	require.True(t, ok)
	require.Equal(t, "Ivan", u.FirstName)

	require.True(t, profiles.Contains(users, 3))
	require.False(t, profiles.Contains(users, 99))
	require.False(t, profiles.Contains(nil, 1))
}

func TestActiveOrganizations(t *testing.T) {
	u := parentWithChild()
	u.Organizations = append(u.Organizations, profiles.OrganizationMembership{IsActive: false})
	require.Len(t, u.ActiveOrganizations(), 1)
}

func TestSanitize(t *testing.T) {
	t.Run("drops ids repeated on the ancestor path", func(t *testing.T) {
		looping := profiles.UserProfile{ID: 1, Children: []profiles.UserProfile{
			{ID: 2, Children: []profiles.UserProfile{{ID: 1}, {ID: 3}}},
		}}
		out := profiles.Sanitize([]profiles.UserProfile{looping})
		require.Len(t, out[0].Children[0].Children, 1)
		require.Equal(t, 3, out[0].Children[0].Children[0].ID)
	})

	t.Run("siblings may share ids with cousins", func(t *testing.T) {
		users := []profiles.UserProfile{
			{ID: 1, Children: []profiles.UserProfile{{ID: 9}}},
			{ID: 2, Children: []profiles.UserProfile{{ID: 9}}},
		}
		out := profiles.Sanitize(users)
		require.Len(t, out[0].Children, 1)
		require.Len(t, out[1].Children, 1)
	})

	t.Run("keeps deep trees intact", func(t *testing.T) {
		const levels = 12
		deep := profiles.UserProfile{ID: 0}
		cur := &deep
		for id := 1; id <= levels; id++ {
			cur.Children = []profiles.UserProfile{{ID: id}}
			cur = &cur.Children[0]
		}
		out := profiles.Sanitize([]profiles.UserProfile{deep})

		depth := 0
		for node := out[0]; len(node.Children) > 0; node = node.Children[0] {
			depth++
		}
		require.Equal(t, levels, depth)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		require.Nil(t, profiles.Sanitize(nil))
	})
}
