package validation

import (
	"context"
	"time"
)

// DateOrder is the contract period rule: the return date may not precede the issue date.
func DateOrder(issue, ret time.Time) Errors {
	if ret.Before(issue) {
		return Form(MsgReturnBeforeIssue)
	}
	return Errors{}
}

// UniqueChecker reports whether a column value is already used by another row.
type UniqueChecker interface {
	Taken(ctx context.Context, model any, column, value string, exceptID uint) (bool, error)
}

type UniqueField struct {
	Field   string // json field the error is reported on
	Column  string
	Value   string
	Message string
}

// Unique checks each field against the repository, excluding the row being edited.
func Unique(ctx context.Context, checker UniqueChecker, model any, exceptID uint, fields ...UniqueField) (Errors, error) {
	out := Errors{}
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		taken, err := checker.Taken(ctx, model, f.Column, f.Value, exceptID)
		if err != nil {
			return nil, err
		}
		if taken {
			out.Add(f.Field, f.Message)
		}
	}
	return out, nil
}
