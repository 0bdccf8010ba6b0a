package app

// SetGetwd replaces the working directory lookup used for config discovery.
func (a *App) SetGetwd(getwd func() (string, error)) {
	a.getwd = getwd
}
