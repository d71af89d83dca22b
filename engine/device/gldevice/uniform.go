package gldevice

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/rotisserie/eris"
)

// programUniform selects the glProgramUniform* entry point for a uniform shape.
//
// Reference: https://registry.khronos.org/OpenGL-Refpages/gl4/html/glProgramUniform.xhtml
func programUniform(program uint32, loc int32, shape device.UniformShape, count int32, data unsafe.Pointer) error {
	if shape.Matrix {
		switch shape.Type {
		case device.Float:
			p := (*float32)(data)
			switch shape.Components {
			case 2:
				gl.ProgramUniformMatrix2fv(program, loc, count, false, p)
			case 3:
				gl.ProgramUniformMatrix3fv(program, loc, count, false, p)
			case 4:
				gl.ProgramUniformMatrix4fv(program, loc, count, false, p)
			default:
				return unsupported(shape)
			}
		case device.Double:
			p := (*float64)(data)
			switch shape.Components {
			case 2:
				gl.ProgramUniformMatrix2dv(program, loc, count, false, p)
			case 3:
				gl.ProgramUniformMatrix3dv(program, loc, count, false, p)
			case 4:
				gl.ProgramUniformMatrix4dv(program, loc, count, false, p)
			default:
				return unsupported(shape)
			}
		default:
			return unsupported(shape)
		}
		return nil
	}

	switch shape.Type {
	case device.Float:
		p := (*float32)(data)
		switch shape.Components {
		case 1:
			gl.ProgramUniform1fv(program, loc, count, p)
		case 2:
			gl.ProgramUniform2fv(program, loc, count, p)
		case 3:
			gl.ProgramUniform3fv(program, loc, count, p)
		case 4:
			gl.ProgramUniform4fv(program, loc, count, p)
		default:
			return unsupported(shape)
		}
	case device.Double:
		p := (*float64)(data)
		switch shape.Components {
		case 1:
			gl.ProgramUniform1dv(program, loc, count, p)
		case 2:
			gl.ProgramUniform2dv(program, loc, count, p)
		case 3:
			gl.ProgramUniform3dv(program, loc, count, p)
		case 4:
			gl.ProgramUniform4dv(program, loc, count, p)
		default:
			return unsupported(shape)
		}
	case device.Int:
		p := (*int32)(data)
		switch shape.Components {
		case 1:
			gl.ProgramUniform1iv(program, loc, count, p)
		case 2:
			gl.ProgramUniform2iv(program, loc, count, p)
		case 3:
			gl.ProgramUniform3iv(program, loc, count, p)
		case 4:
			gl.ProgramUniform4iv(program, loc, count, p)
		default:
			return unsupported(shape)
		}
	case device.UnsignedInt:
		p := (*uint32)(data)
		switch shape.Components {
		case 1:
			gl.ProgramUniform1uiv(program, loc, count, p)
		case 2:
			gl.ProgramUniform2uiv(program, loc, count, p)
		case 3:
			gl.ProgramUniform3uiv(program, loc, count, p)
		case 4:
			gl.ProgramUniform4uiv(program, loc, count, p)
		default:
			return unsupported(shape)
		}
	default:
		return unsupported(shape)
	}
	return nil
}

func unsupported(shape device.UniformShape) error {
	return eris.Errorf("unsupported uniform shape %s x%d (matrix=%t)", shape.Type, shape.Components, shape.Matrix)
}
