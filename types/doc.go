// Package types holds the small set of backend-agnostic wire types core
// and hal share across package boundaries.
//
// Today that's just TextureFormat: the enum core.Texture and the hal
// backends use to agree on pixel layout without core depending on any
// one backend's native format constants.
package types
