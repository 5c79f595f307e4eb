package avutil

// PixelFormat represents FFmpeg pixel formats (enum AVPixelFormat).
// Values are only stable for a given libavutil major version; use the
// pixfmt registry to translate names to ids at runtime.
type PixelFormat int32

// Pixel formats whose ids are unchanged across libavutil 56 and 57.
const (
	PixelFormatNone    PixelFormat = -1
	PixelFormatYUV420P PixelFormat = 0 // Planar YUV 4:2:0
	PixelFormatYUYV422 PixelFormat = 1 // Packed YUV 4:2:2
	PixelFormatRGB24   PixelFormat = 2 // Packed RGB 8:8:8
	PixelFormatBGR24   PixelFormat = 3 // Packed BGR 8:8:8
	PixelFormatYUV422P PixelFormat = 4 // Planar YUV 4:2:2
	PixelFormatYUV444P PixelFormat = 5 // Planar YUV 4:4:4
	PixelFormatGray8   PixelFormat = 8 // 8-bit grayscale
	PixelFormatNV12    PixelFormat = 23
	PixelFormatARGB    PixelFormat = 25
	PixelFormatRGBA    PixelFormat = 26
	PixelFormatABGR    PixelFormat = 27
	PixelFormatBGRA    PixelFormat = 28
)

// Pixel format descriptor flags (AV_PIX_FMT_FLAG_*).
const (
	PixFmtFlagBE        uint64 = 1 << 0
	PixFmtFlagPAL       uint64 = 1 << 1
	PixFmtFlagBitstream uint64 = 1 << 2
	PixFmtFlagHWAccel   uint64 = 1 << 3
	PixFmtFlagPlanar    uint64 = 1 << 4
	PixFmtFlagRGB       uint64 = 1 << 5
	PixFmtFlagAlpha     uint64 = 1 << 7
	PixFmtFlagBayer     uint64 = 1 << 8
	PixFmtFlagFloat     uint64 = 1 << 9
)

// MediaType represents FFmpeg media types.
type MediaType int32

const (
	MediaTypeUnknown    MediaType = -1
	MediaTypeVideo      MediaType = 0
	MediaTypeAudio      MediaType = 1
	MediaTypeData       MediaType = 2
	MediaTypeSubtitle   MediaType = 3
	MediaTypeAttachment MediaType = 4
)

// String returns the media type name as printed by av_get_media_type_string.
func (m MediaType) String() string {
	switch m {
	case MediaTypeVideo:
		return "video"
	case MediaTypeAudio:
		return "audio"
	case MediaTypeData:
		return "data"
	case MediaTypeSubtitle:
		return "subtitle"
	case MediaTypeAttachment:
		return "attachment"
	default:
		return "unknown"
	}
}

// PictureType is enum AVPictureType.
type PictureType int32

const (
	PictureTypeNone PictureType = iota
	PictureTypeI
	PictureTypeP
	PictureTypeB
	PictureTypeS
	PictureTypeSI
	PictureTypeSP
	PictureTypeBI
)

// String returns the single-letter code used by av_get_picture_type_char.
func (p PictureType) String() string {
	switch p {
	case PictureTypeI:
		return "I"
	case PictureTypeP:
		return "P"
	case PictureTypeB:
		return "B"
	case PictureTypeS:
		return "S"
	case PictureTypeSI:
		return "i"
	case PictureTypeSP:
		return "p"
	case PictureTypeBI:
		return "b"
	default:
		return "?"
	}
}

// NoPTSValue is the value used to indicate no PTS (AV_NOPTS_VALUE).
const NoPTSValue int64 = -9223372036854775808
