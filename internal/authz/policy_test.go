package authz

import (
	"testing"

	"travelblog/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCheckArticleOwnership(t *testing.T) {
	p := Default()
	author := Actor{ID: 7, Role: models.RoleEditor}
	otherEditor := Actor{ID: 8, Role: models.RoleEditor}
	admin := Actor{ID: 1, Role: models.RoleAdmin}
	reader := Actor{ID: 9, Role: models.RoleUser}

	assert.NoError(t, p.Check(author, Article, Update, 7))
	assert.ErrorIs(t, p.Check(otherEditor, Article, Update, 7), ErrForbidden)
	assert.NoError(t, p.Check(admin, Article, Delete, 7))
	assert.ErrorIs(t, p.Check(reader, Article, Update, 9), ErrForbidden)
	assert.ErrorIs(t, p.Check(Actor{}, Article, Update, 7), ErrUnauthenticated)
}

func TestCheckRoleTable(t *testing.T) {
	p := Default()
	cases := []struct {
		role models.Role
		res  Resource
		act  Action
		ok   bool
	}{
		{models.RoleEditor, Article, Create, true},
		{models.RoleUser, Article, Create, false},
		{models.RoleEditor, User, List, false},
		{models.RoleAdmin, User, Delete, true},
		{models.RoleEditor, Settings, Update, false},
		{models.RoleAdmin, Settings, Upload, true},
		{models.RoleEditor, Stats, Read, true},
		{models.RoleUser, Stats, Read, false},
		{models.RoleUser, Comment, Create, true},
		{models.RoleUser, Comment, Moderate, false},
		{models.RoleEditor, Media, Create, true},
		{models.RoleUser, Media, List, false},
	}
	for _, c := range cases {
		err := p.CheckRole(Actor{ID: 5, Role: c.role}, c.res, c.act)
		if c.ok {
			assert.NoError(t, err, "%s %s %s", c.role, c.res, c.act)
		} else {
			assert.ErrorIs(t, err, ErrForbidden, "%s %s %s", c.role, c.res, c.act)
		}
	}
}

func TestUnknownRuleIsForbidden(t *testing.T) {
	assert.ErrorIs(t, Default().CheckRole(Actor{ID: 1, Role: models.RoleAdmin}, Stats, Delete), ErrForbidden)
}

func TestCommentDeleteByAuthor(t *testing.T) {
	p := Default()
	assert.NoError(t, p.Check(Actor{ID: 3, Role: models.RoleUser}, Comment, Delete, 3))
	assert.ErrorIs(t, p.Check(Actor{ID: 4, Role: models.RoleUser}, Comment, Delete, 3), ErrForbidden)
	assert.NoError(t, p.Check(Actor{ID: 1, Role: models.RoleAdmin}, Comment, Delete, 3))
}
