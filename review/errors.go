package review

import "fmt"

type (
	InvalidReview struct {
		Field  string
		Reason string
	}

	NotFound struct {
		ID string
	}
)

func (i InvalidReview) Error() string {
	return fmt.Sprintf("%v %v", i.Field, i.Reason)
}

func (InvalidReview) Is(target error) bool {
	_, ok := target.(InvalidReview)
	return ok
}

func (n NotFound) Error() string {
	return fmt.Sprintf("review %v not found", n.ID)
}

func (NotFound) Is(target error) bool {
	_, ok := target.(NotFound)
	return ok
}
