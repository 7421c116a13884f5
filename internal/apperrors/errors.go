package apperrors

import "errors"

// Sentinel errors for the redemption and issuance flows. Services return
// these (possibly wrapped) so handlers can map them to HTTP statuses and
// stable errorKind strings with errors.Is.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrLocalNotFound    = errors.New("local not found")
	ErrStaffNotFound    = errors.New("staff member not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrTokenNotFound    = errors.New("token not found")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenAlreadyUsed = errors.New("token already used")
	ErrDuplicateVisit   = errors.New("visit already registered for this local today")
	ErrVisitNotFound    = errors.New("visit not found")
)

// Error kind strings surfaced in JSON responses.
const (
	KindInvalidInput       = "InvalidInput"
	KindLocalNotFound      = "LocalNotFound"
	KindStaffNotFound      = "StaffNotFound"
	KindCustomerNotFound   = "CustomerNotFound"
	KindTokenNotFound      = "TokenNotFound"
	KindTokenExpired       = "TokenExpired"
	KindTokenAlreadyUsed   = "TokenAlreadyUsed"
	KindDuplicateVisit     = "DuplicateVisitWindow"
	KindVisitNotFound      = "VisitNotFound"
	KindPersistenceFailure = "PersistenceFailure"
)

// Kind returns the errorKind string for err. Unrecognized errors are
// persistence failures: the caller may retry, never swallow.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrLocalNotFound):
		return KindLocalNotFound
	case errors.Is(err, ErrStaffNotFound):
		return KindStaffNotFound
	case errors.Is(err, ErrCustomerNotFound):
		return KindCustomerNotFound
	case errors.Is(err, ErrTokenNotFound):
		return KindTokenNotFound
	case errors.Is(err, ErrTokenExpired):
		return KindTokenExpired
	case errors.Is(err, ErrTokenAlreadyUsed):
		return KindTokenAlreadyUsed
	case errors.Is(err, ErrDuplicateVisit):
		return KindDuplicateVisit
	case errors.Is(err, ErrVisitNotFound):
		return KindVisitNotFound
	default:
		return KindPersistenceFailure
	}
}

// HTTPStatus maps err to the status code the API responds with.
func HTTPStatus(err error) int {
	switch Kind(err) {
	case KindInvalidInput:
		return 400
	case KindLocalNotFound, KindStaffNotFound, KindCustomerNotFound, KindTokenNotFound, KindVisitNotFound:
		return 404
	case KindTokenAlreadyUsed, KindDuplicateVisit:
		return 409
	case KindTokenExpired:
		return 410
	default:
		return 500
	}
}
