// Package config holds the immutable settings snapshot for one run of
// cargo-check-i18n: where the translation endpoint lives, how requests are
// shaped, and how fast they may be sent. It also writes the bootstrap template
// on first use.
package config
