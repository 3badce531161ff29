package test_utils

// Identity used by handler and service tests.
const (
	TestUserEmail    = "officer@boredapes.gg"
	TestUserPassword = "s3cret-raid-night"
)
