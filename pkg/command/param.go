package command

// Param describes one declared parameter of a command callback.
type Param struct {
	Name        string
	Description string
	Required    bool

	// Default is stored for the parameter when input supplies no value and
	// Required is false.
	Default any

	// Rest makes the parameter consume the remainder of the message as one
	// string. Only meaningful on the final parameter.
	Rest bool

	// Converter turns the raw word into a typed value. Nil passes the raw
	// string through.
	Converter Converter
}

func (p *Param) convert(ctx *Context, raw string) (any, error) {
	if p.Converter == nil {
		return raw, nil
	}
	v, err := p.Converter.Convert(ctx, raw)
	if err != nil {
		if IsError(err) {
			return nil, err
		}
		return nil, &ConversionError{Converter: p.Converter, Err: err}
	}
	return v, nil
}
