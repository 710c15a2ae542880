// Package main provides the entry point for the MirrorBall gallery api.
// It serves presigned uploads, image listings and the global email restriction
// over a Fiber REST api backed by DynamoDB or a gorm sql store, S3 and a Cognito user pool.
package main
