package types

// TextureFormat describes the format of a texture.
type TextureFormat uint32

const (
	// TextureFormatUndefined is an undefined format.
	TextureFormatUndefined TextureFormat = iota

	// 8-bit formats
	TextureFormatR8Unorm
	TextureFormatR8Snorm
	TextureFormatR8Uint
	TextureFormatR8Sint

	// 16-bit formats
	TextureFormatR16Uint
	TextureFormatR16Sint
	TextureFormatR16Float
	TextureFormatRG8Unorm
	TextureFormatRG8Snorm
	TextureFormatRG8Uint
	TextureFormatRG8Sint

	// 32-bit formats
	TextureFormatR32Uint
	TextureFormatR32Sint
	TextureFormatR32Float
	TextureFormatRG16Uint
	TextureFormatRG16Sint
	TextureFormatRG16Float
	TextureFormatRGBA8Unorm
	TextureFormatRGBA8UnormSrgb
	TextureFormatRGBA8Snorm
	TextureFormatRGBA8Uint
	TextureFormatRGBA8Sint
	TextureFormatBGRA8Unorm
	TextureFormatBGRA8UnormSrgb

	// Packed formats
	TextureFormatRGB9E5Ufloat
	TextureFormatRGB10A2Uint
	TextureFormatRGB10A2Unorm
	TextureFormatRG11B10Ufloat

	// 64-bit formats
	TextureFormatRG32Uint
	TextureFormatRG32Sint
	TextureFormatRG32Float
	TextureFormatRGBA16Uint
	TextureFormatRGBA16Sint
	TextureFormatRGBA16Float

	// 128-bit formats
	TextureFormatRGBA32Uint
	TextureFormatRGBA32Sint
	TextureFormatRGBA32Float

	// Depth/stencil formats
	TextureFormatStencil8
	TextureFormatDepth16Unorm
	TextureFormatDepth24Plus
	TextureFormatDepth24PlusStencil8
	TextureFormatDepth32Float
	TextureFormatDepth32FloatStencil8
)

// String returns the wgpu-style name of the format, matching the
// teacher's enum-with-String convention used throughout core and hal.
func (f TextureFormat) String() string {
	switch f {
	case TextureFormatUndefined:
		return "undefined"
	case TextureFormatR8Unorm:
		return "r8unorm"
	case TextureFormatR8Snorm:
		return "r8snorm"
	case TextureFormatR8Uint:
		return "r8uint"
	case TextureFormatR8Sint:
		return "r8sint"
	case TextureFormatR16Uint:
		return "r16uint"
	case TextureFormatR16Sint:
		return "r16sint"
	case TextureFormatR16Float:
		return "r16float"
	case TextureFormatRG8Unorm:
		return "rg8unorm"
	case TextureFormatRG8Snorm:
		return "rg8snorm"
	case TextureFormatRG8Uint:
		return "rg8uint"
	case TextureFormatRG8Sint:
		return "rg8sint"
	case TextureFormatR32Uint:
		return "r32uint"
	case TextureFormatR32Sint:
		return "r32sint"
	case TextureFormatR32Float:
		return "r32float"
	case TextureFormatRG16Uint:
		return "rg16uint"
	case TextureFormatRG16Sint:
		return "rg16sint"
	case TextureFormatRG16Float:
		return "rg16float"
	case TextureFormatRGBA8Unorm:
		return "rgba8unorm"
	case TextureFormatRGBA8UnormSrgb:
		return "rgba8unorm-srgb"
	case TextureFormatRGBA8Snorm:
		return "rgba8snorm"
	case TextureFormatRGBA8Uint:
		return "rgba8uint"
	case TextureFormatRGBA8Sint:
		return "rgba8sint"
	case TextureFormatBGRA8Unorm:
		return "bgra8unorm"
	case TextureFormatBGRA8UnormSrgb:
		return "bgra8unorm-srgb"
	case TextureFormatRGB9E5Ufloat:
		return "rgb9e5ufloat"
	case TextureFormatRGB10A2Uint:
		return "rgb10a2uint"
	case TextureFormatRGB10A2Unorm:
		return "rgb10a2unorm"
	case TextureFormatRG11B10Ufloat:
		return "rg11b10ufloat"
	case TextureFormatRG32Uint:
		return "rg32uint"
	case TextureFormatRG32Sint:
		return "rg32sint"
	case TextureFormatRG32Float:
		return "rg32float"
	case TextureFormatRGBA16Uint:
		return "rgba16uint"
	case TextureFormatRGBA16Sint:
		return "rgba16sint"
	case TextureFormatRGBA16Float:
		return "rgba16float"
	case TextureFormatRGBA32Uint:
		return "rgba32uint"
	case TextureFormatRGBA32Sint:
		return "rgba32sint"
	case TextureFormatRGBA32Float:
		return "rgba32float"
	case TextureFormatStencil8:
		return "stencil8"
	case TextureFormatDepth16Unorm:
		return "depth16unorm"
	case TextureFormatDepth24Plus:
		return "depth24plus"
	case TextureFormatDepth24PlusStencil8:
		return "depth24plus-stencil8"
	case TextureFormatDepth32Float:
		return "depth32float"
	case TextureFormatDepth32FloatStencil8:
		return "depth32float-stencil8"
	default:
		return "unknown"
	}
}
