package types

// TypeKind discriminates the TypeNode union. It mirrors the `$type`
// field of the bicep types JSON; anything unrecognized maps to
// TypeKindOther rather than failing the decode.
type TypeKind string

const (
	TypeKindResource TypeKind = "ResourceType"
	TypeKindObject   TypeKind = "ObjectType"
	TypeKindString   TypeKind = "StringType"
	TypeKindInteger  TypeKind = "IntegerType"
	TypeKindBoolean  TypeKind = "BooleanType"
	TypeKindArray    TypeKind = "ArrayType"
	TypeKindUnion    TypeKind = "UnionType"
	TypeKindOther    TypeKind = "Other"
)

// Scope is the ARM hierarchy level at which a resource type may be created.
type Scope string

const (
	ScopeTenant          Scope = "Tenant"
	ScopeManagementGroup Scope = "ManagementGroup"
	ScopeSubscription    Scope = "Subscription"
	ScopeResourceGroup   Scope = "ResourceGroup"
	ScopeExtension       Scope = "Extension"
	ScopeUnknown         Scope = "Unknown"
)

// Scope bitmask values as emitted in the bicep types `scopeType` field.
const (
	ScopeBitTenant          = 1
	ScopeBitManagementGroup = 2
	ScopeBitSubscription    = 4
	ScopeBitResourceGroup   = 8
	ScopeBitExtension       = 16
)

// Property flag bits.
const (
	FlagRequired = 1
	FlagReadOnly = 2
)

// CacheDecision is the outcome of the version-cache policy.
type CacheDecision string

const (
	DecisionUseCached  CacheDecision = "use-cached"
	DecisionRegenerate CacheDecision = "regenerate"
)
