package ports

import (
	"context"

	"github.com/alejandrodnm/polycopy/internal/domain"
)

// Notifier presenta el resultado de cada ciclo al operador.
type Notifier interface {
	// NotifyCycle muestra el resumen del ciclo. En la implementación de
	// consola, imprime una línea compacta o una tabla completa.
	NotifyCycle(ctx context.Context, result domain.CycleResult) error
}
