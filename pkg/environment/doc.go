// Package environment provides application environment detection shared by
// configuration and logging.
package environment
