package middleware

// WithDefaultsForTest exposes the option merge to black-box tests.
var WithDefaultsForTest = withDefaults
