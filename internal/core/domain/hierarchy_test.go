package domain_test

import (
	"testing"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func unit(id, name string, typ domain.UnitType, parent string) domain.OrganizationalUnit {
	u := domain.OrganizationalUnit{UnitID: id, Name: name, Type: typ}
	if parent != "" {
		u.ParentID = stringPtr(parent)
	}
	return u
}

func sampleTree() *domain.OrgTree {
	return domain.NewOrgTree([]domain.OrganizationalUnit{
		unit("voi", "Mazowieckie", domain.UnitTypeVoivodeship, ""),
		unit("cty", "Powiat A", domain.UnitTypeCounty, "voi"),
		unit("cty2", "Powiat B", domain.UnitTypeCounty, "voi"),
		unit("mun", "Gmina A", domain.UnitTypeMunicipality, "cty"),
		unit("sch", "Szkoła 1", domain.UnitTypeInstitution, "mun"),
		unit("lib", "Biblioteka", domain.UnitTypeInstitution, "mun"),
	})
}

func ids(units []domain.OrganizationalUnit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.UnitID
	}
	return out
}

func TestOrgTree_Navigation(t *testing.T) {
	tree := sampleTree()

	parent, ok := tree.Parent("mun")
	assert.True(t, ok)
	assert.Equal(t, "cty", parent.UnitID)

	_, ok = tree.Parent("voi")
	assert.False(t, ok)

	assert.Equal(t, []string{"cty", "cty2"}, ids(tree.Children("voi")))
	assert.Equal(t, []string{"lib", "sch"}, ids(tree.Children("mun")), "children are ordered by name")
	assert.Equal(t, []string{"cty", "mun", "lib", "sch", "cty2"}, ids(tree.Descendants("voi")))
	assert.Equal(t, []string{"mun", "lib", "sch"}, tree.SubtreeIDs("mun"))
	assert.Equal(t, []string{"voi", "cty", "mun", "sch"}, ids(tree.Path("sch")))
	assert.Equal(t, []string{"voi"}, ids(tree.Roots()))

	assert.True(t, tree.HasChildren("mun"))
	assert.False(t, tree.HasChildren("sch"))
}

func TestOrgTree_Ancestry(t *testing.T) {
	tree := sampleTree()

	assert.True(t, tree.IsAncestor("voi", "sch"))
	assert.True(t, tree.IsAncestor("mun", "sch"))
	assert.False(t, tree.IsAncestor("sch", "sch"))
	assert.False(t, tree.IsAncestor("cty2", "sch"))
	assert.True(t, tree.Covers("sch", "sch"))

	child, ok := tree.DirectChildToward("sch", "voi")
	assert.True(t, ok)
	assert.Equal(t, "cty", child.UnitID)

	_, ok = tree.DirectChildToward("sch", "cty2")
	assert.False(t, ok)
}

func TestOrgTree_UnknownUnit(t *testing.T) {
	tree := sampleTree()
	assert.Empty(t, tree.Path("missing"))
	assert.Empty(t, tree.Descendants("missing"))
	_, ok := tree.Unit("missing")
	assert.False(t, ok)
}
