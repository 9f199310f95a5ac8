package perfmetrics

func noop() {}

// Func enters (name, category) and returns the function that exits it:
//
//	defer s.Func("load", "io")()
//
// Errors are logged and counted, never returned, so the guard is safe to use
// on every path including panics unwinding through the deferred call.
func (s *Session) Func(name, category string) func() {
	id, err := s.Register(name, category)
	if err != nil {
		return noop
	}
	return s.FuncID(id)
}

// FuncID is Func for an already registered point.
func (s *Session) FuncID(id ID) func() {
	if err := s.Enter(id); err != nil {
		return noop
	}
	return func() {
		_ = s.Exit(id)
	}
}
