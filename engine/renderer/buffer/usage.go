package buffer

import "github.com/Carmen-Shannon/oxy-tiles/engine/device"

// Usage is a hint about how the data store will be accessed. It only affects where the
// device places the store, never the result of any operation.
type Usage device.Enum

const (
	// StreamDraw data is written once by the application and drawn a few times.
	StreamDraw = Usage(device.StreamDraw)
	// StreamRead data is written once by the device and read a few times by the application.
	StreamRead = Usage(device.StreamRead)
	// StreamCopy data is written once by the device and drawn a few times.
	StreamCopy = Usage(device.StreamCopy)
	// StaticDraw data is written once by the application and drawn many times.
	StaticDraw = Usage(device.StaticDraw)
	// StaticRead data is written once by the device and read many times by the application.
	StaticRead = Usage(device.StaticRead)
	// StaticCopy data is written once by the device and drawn many times.
	StaticCopy = Usage(device.StaticCopy)
	// DynamicDraw data is rewritten by the application often and drawn many times.
	DynamicDraw = Usage(device.DynamicDraw)
	// DynamicRead data is rewritten by the device often and read many times by the application.
	DynamicRead = Usage(device.DynamicRead)
	// DynamicCopy data is rewritten by the device often and drawn many times.
	DynamicCopy = Usage(device.DynamicCopy)
)

func (u Usage) String() string {
	switch u {
	case StreamDraw:
		return "stream_draw"
	case StreamRead:
		return "stream_read"
	case StreamCopy:
		return "stream_copy"
	case StaticDraw:
		return "static_draw"
	case StaticRead:
		return "static_read"
	case StaticCopy:
		return "static_copy"
	case DynamicDraw:
		return "dynamic_draw"
	case DynamicRead:
		return "dynamic_read"
	case DynamicCopy:
		return "dynamic_copy"
	default:
		return device.Enum(u).String()
	}
}
