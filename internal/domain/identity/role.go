package identity

// Role represents the privilege tier of an actor. Tiers are strictly
// ordered: operator < supervisor < administration < direction.
type Role string

const (
	RoleOperator       Role = "OPERATOR"       // site personnel loading expenses
	RoleSupervisor     Role = "SUPERVISOR"     // site manager
	RoleAdministration Role = "ADMINISTRATION" // back-office accounting
	RoleDirection      Role = "DIRECTION"      // top privilege tier
)

// IsValid checks if the role is a known Role
func (r Role) IsValid() bool {
	switch r {
	case RoleOperator, RoleSupervisor, RoleAdministration, RoleDirection:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

func (r Role) rank() int {
	switch r {
	case RoleOperator:
		return 1
	case RoleSupervisor:
		return 2
	case RoleAdministration:
		return 3
	case RoleDirection:
		return 4
	}
	return 0
}

// AtLeast reports whether the role sits at or above the given tier
func (r Role) AtLeast(other Role) bool {
	return r.rank() >= other.rank()
}

// Action names a privileged operation gated by Can.
type Action string

const (
	ActionValidateExpense          Action = "expense.validate"
	ActionOverrideDuplicateInvoice Action = "expense.override_duplicate"
	ActionManualCashAdjustment     Action = "cashbox.adjust"
	ActionApproveCashDifference    Action = "cashbox.approve_difference"
	ActionCloseMonth               Action = "month.close"
	ActionReopenMonth              Action = "month.reopen"
	ActionMutateClosedMonth        Action = "month.mutate_closed"
	ActionUnblockContract          Action = "contract.unblock"
)

// capabilities maps each action to the minimum role that may perform it.
// Every guard clause in the application layer resolves privilege here, so
// the rules live in one place.
var capabilities = map[Action]Role{
	ActionValidateExpense:          RoleAdministration,
	ActionOverrideDuplicateInvoice: RoleDirection,
	ActionManualCashAdjustment:     RoleDirection,
	ActionApproveCashDifference:    RoleAdministration,
	ActionCloseMonth:               RoleAdministration,
	ActionReopenMonth:              RoleDirection,
	ActionMutateClosedMonth:        RoleDirection,
	ActionUnblockContract:          RoleDirection,
}

// Can reports whether an actor with the given role may perform the action.
// Unknown actions are denied.
func Can(role Role, action Action) bool {
	min, ok := capabilities[action]
	if !ok {
		return false
	}
	return role.AtLeast(min)
}
