package core

import (
	"fmt"
	"strings"

	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/types"
)

// ClassifyScope maps a scopeType bitmask to its semantic scope. Only
// exact single-bit values classify; combined masks report Unknown, the
// parent guidance below still handles them bit by bit.
func ClassifyScope(bits int) types.Scope {
	switch bits {
	case types.ScopeBitTenant:
		return types.ScopeTenant
	case types.ScopeBitManagementGroup:
		return types.ScopeManagementGroup
	case types.ScopeBitSubscription:
		return types.ScopeSubscription
	case types.ScopeBitResourceGroup:
		return types.ScopeResourceGroup
	case types.ScopeBitExtension:
		return types.ScopeExtension
	default:
		return types.ScopeUnknown
	}
}

// DeriveParentGuidance builds the natural-language parent_id guidance
// for a resource type. Nested types (more than two path segments before
// the `@`) point at their parent type; top-level types fall back to the
// first matching scope bit.
func DeriveParentGuidance(typeName string, bits int) string {
	resourceType, _, _ := strings.Cut(typeName, "@")
	parts := strings.Split(resourceType, "/")

	if len(parts) > 2 {
		parentType := strings.Join(parts[:len(parts)-1], "/")
		return fmt.Sprintf(
			"Reference to the `id` property of resource of type: `%s`, or a string in the format like: /subscriptions/{subscriptionId}/resourceGroups/{resourceGroupName}/providers/%s",
			parentType, parentType,
		)
	}

	switch {
	case bits&types.ScopeBitTenant != 0:
		return "A tenant id in format /tenants/{tenantId}"
	case bits&types.ScopeBitManagementGroup != 0:
		return "A management group id in format /providers/Microsoft.Management/managementGroups/{managementGroupId}"
	case bits&types.ScopeBitSubscription != 0:
		return "A subscription id in format /subscriptions/{subscriptionId}"
	case bits&types.ScopeBitResourceGroup != 0:
		return "Reference to the `id` property of a `Microsoft.Resources/resourceGroups`, or a string value in format /subscriptions/{subscriptionId}/resourceGroups/{resourceGroupName}"
	case bits&types.ScopeBitExtension != 0:
		return "A resource id reference to a extension."
	default:
		return "Unknown scope"
	}
}
