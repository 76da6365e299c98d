package solver

import (
	"errors"
	"fmt"
)

// Kind — машинно-читаемая категория отказа.
type Kind string

const (
	// KindParse — параметр a не удалось разобрать как число.
	KindParse Kind = "parse-error"
	// KindNoBracket — смена знака f не найдена до границы поиска.
	KindNoBracket Kind = "no-bracket-found"
	// KindNoConvergence — итерации вышли из области определения или исчерпали лимит.
	KindNoConvergence Kind = "no-convergence"
)

// Сентинелы для errors.Is; каждому соответствует Kind.
var (
	ErrParse         = errors.New("solver: parse error")
	ErrNoBracket     = errors.New("solver: no bracket found")
	ErrNoConvergence = errors.New("solver: no convergence")

	// ErrStopped — специальная ошибка для принудительной остановки
	ErrStopped = errors.New("solver: stopped by callback")
)

// Failure — типизированный отказ решателя с сообщением для пользователя.
type Failure struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

// Is сопоставляет отказ с сентинелом его категории.
func (f *Failure) Is(target error) bool {
	switch target {
	case ErrParse:
		return f.Kind == KindParse
	case ErrNoBracket:
		return f.Kind == KindNoBracket
	case ErrNoConvergence:
		return f.Kind == KindNoConvergence
	}
	return false
}

func fail(kind Kind, msg string, err error) *Failure {
	return &Failure{Kind: kind, Message: msg, Err: err}
}

// KindOf возвращает категорию отказа или "" для прочих ошибок.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}
