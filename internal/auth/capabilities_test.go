package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilitiesAdmin(t *testing.T) {
	caps := Capabilities([]string{RoleAdmin})
	assert.True(t, caps.Has(CapManageUsers))
	assert.True(t, caps.Has(CapViewReports))
	assert.False(t, caps.Has(CapUseCart))
}

func TestCapabilitiesClient(t *testing.T) {
	caps := Capabilities([]string{RoleClient})
	assert.True(t, caps.Has(CapUseCart))
	assert.True(t, caps.Has(CapPlaceOrders))
	assert.False(t, caps.Has(CapManageUsers))
}

func TestCapabilitiesUnion(t *testing.T) {
	caps := Capabilities([]string{RoleManager, RoleClient})
	assert.True(t, caps.Has(CapManageClients))
	assert.True(t, caps.Has(CapUseCart))
}

func TestCapabilitiesUnknownAndEmpty(t *testing.T) {
	assert.Empty(t, Capabilities(nil))
	assert.Empty(t, Capabilities([]string{"INTERN"}))
}

func TestCapabilityListStableOrder(t *testing.T) {
	first := Capabilities([]string{RoleAdmin}).List()
	second := Capabilities([]string{RoleAdmin}).List()
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}
