package http

import (
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// pathUUID binds a simple-style path parameter into a kernel UUID.
func pathUUID(ctx echo.Context, name string) (kernel.UUID, error) {
	var raw openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &raw,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return kernel.UUIDFromGoogle(raw)
}

// queryParam binds an optional form-style query parameter.
func queryParam[T any](ctx echo.Context, name string, required bool) (T, error) {
	var value T
	if err := runtime.BindQueryParameter("form", true, required, name, ctx.QueryParams(), &value); err != nil {
		return value, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return value, nil
}

func uuidsFrom(raw []openapi_types.UUID) ([]kernel.UUID, error) {
	ids := make([]kernel.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := kernel.UUIDFromGoogle(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
