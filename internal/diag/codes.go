package diag

// Code identifies a specific diagnostic, ported from
// original_source/src/diagnostic.h's E_*/W_* constant table.
type Code string

//nolint:revive
const (
	EUnexpectedChar    Code = "E001"
	EUnterminatedStr   Code = "E002"
	EUnterminatedLong  Code = "E003"
	EExpectedToken     Code = "E004"
	EExpectedExpr      Code = "E005"
	EInvalidAssignTgt  Code = "E006"
	ETooManyLocals     Code = "E007"
	ETooManyConstants  Code = "E008"
	ETooManyUpvalues   Code = "E009"
	ETooManyArgs       Code = "E010"
	EReturnAtTop       Code = "E011"
	ESelfOutsideMethod Code = "E012"
	ESuperOutsideClass Code = "E013"
	EInheritSelf       Code = "E014"
	EBreakOutsideLoop  Code = "E015"
	EJumpTooFar        Code = "E016"

	WUnusedLocal    Code = "W001"
	WShadowedGlobal Code = "W002"
	WUnreachable    Code = "W003"
)
