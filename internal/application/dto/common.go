package dto

// ErrorResponse cuerpo de error HTTP del módulo de usuarios.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrorResponse lista ordenada de mensajes de validación.
type ValidationErrorResponse struct {
	Errores []string `json:"errores"`
}
