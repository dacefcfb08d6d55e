package openapi

import (
	"github.com/swaggo/swag"
)

type swaggerDoc struct{}

func (swaggerDoc) ReadDoc() string {
	return string(document)
}

func init() {
	swag.Register(swag.Name, swaggerDoc{})
}
