package actions

// SetOpenURL replaces the browser launcher until the returned func is called
func SetOpenURL(fn func(string) error) func() {
	prev := openURL
	openURL = fn
	return func() { openURL = prev }
}
