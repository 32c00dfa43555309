// Package models lists the models offered by the configured translation
// endpoint, so users can pick a value for the model setting.
package models
