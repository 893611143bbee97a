package schema

// FetchSDLForTest exposes fetchSDL to black-box tests.
var FetchSDLForTest = fetchSDL
