package cli

// TermUI adapts the session controller's navigation and notification side
// effects to terminal output. A CLI has no router, so navigation requests
// are shown as a path hint.
type TermUI struct{}

func (TermUI) NavigateTo(path string) {
	printlnFn("->", path)
}

func (TermUI) Notify(message string) {
	printlnFn("!", message)
}
