// Package file loads pipeline settings from a TOML file. Credentials can be
// supplied through the environment instead of the file so the config can be
// committed to operator runbooks without secrets.
package file
