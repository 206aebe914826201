//go:build linux

package fbdev

// Request codes from <linux/fb.h>.
const (
	fbioGetVScreenInfo = 0x4600
	fbioPutVScreenInfo = 0x4601
	fbioGetFScreenInfo = 0x4602
	fbioPanDisplay     = 0x4606
)

// bitfield mirrors struct fb_bitfield.
type bitfield struct {
	offset   uint32
	length   uint32
	msbRight uint32
}

// varScreenInfo mirrors struct fb_var_screeninfo.
type varScreenInfo struct {
	xres         uint32
	yres         uint32
	xresVirtual  uint32
	yresVirtual  uint32
	xOffset      uint32
	yOffset      uint32
	bitsPerPixel uint32
	grayscale    uint32
	red          bitfield
	green        bitfield
	blue         bitfield
	transp       bitfield
	nonstd       uint32
	activate     uint32
	height       uint32
	width        uint32
	accelFlags   uint32
	pixclock     uint32
	leftMargin   uint32
	rightMargin  uint32
	upperMargin  uint32
	lowerMargin  uint32
	hsyncLen     uint32
	vsyncLen     uint32
	sync         uint32
	vmode        uint32
	rotate       uint32
	colorspace   uint32
	reserved     [4]uint32
}

// fixScreenInfo mirrors struct fb_fix_screeninfo.
type fixScreenInfo struct {
	id           [16]byte
	smemStart    uintptr
	smemLen      uint32
	typ          uint32
	typAux       uint32
	visual       uint32
	xPanStep     uint16
	yPanStep     uint16
	yWrapStep    uint16
	lineLength   uint32
	mmioStart    uintptr
	mmioLen      uint32
	accel        uint32
	capabilities uint16
	reserved     [2]uint16
}
