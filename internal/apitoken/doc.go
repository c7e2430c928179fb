// Package apitoken resolves the xcelera API token from an explicit value or an env:NAME / file:PATH source.
package apitoken
