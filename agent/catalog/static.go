package catalog

import (
	"context"

	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
)

// StaticCatalog serves a fixed flavor list from memory.
type StaticCatalog []contractx.RawFlavor

func (s StaticCatalog) ListFlavors(ctx context.Context) ([]contractx.RawFlavor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]contractx.RawFlavor, len(s))
	copy(out, s)
	return out, nil
}

// DefaultMenu is the shop's house menu, also used to seed an empty database.
func DefaultMenu() StaticCatalog {
	return StaticCatalog{
		{Name: "Carne", Price: "26.00", Ingredients: "Carne moída, Cebola, Azeitona"},
		{Name: "Frango", Price: "27.00", Ingredients: "Frango desfiado, Catupiry, Milho"},
		{Name: "Queijo", Price: "25.00", Ingredients: "Mussarela, Provolone, Orégano"},
		{Name: "Palmito", Price: "28.00", Ingredients: "Palmito, Tomate, Queijo prato"},
		{Name: "Pizza", Price: "27.00", Ingredients: "Presunto, Mussarela, Tomate"},
		{Name: "Calabresa", Price: "27.00", Ingredients: "Calabresa, Cebola, Queijo"},
		{Name: "Bacalhau", Price: "35.00", Ingredients: "Bacalhau, Batata, Pimentão"},
		{Name: "Brócolis", Price: "26.00", Ingredients: "Brócolis, Alho, Ricota"},
		{Name: "Carne Seca", Price: "32.00", Ingredients: "Carne seca, Abóbora, Cebola roxa"},
		{Name: "Catupiry", Price: "26.00", Ingredients: "Catupiry, Tomate seco, Azeitona preta"},
		{Name: "Milho", Price: "24.00", Ingredients: "Milho, Queijo coalho, Creme de leite"},
		{Name: "Banana", Price: "22.00", Ingredients: "Banana, Canela, Açúcar"},
		{Name: "Chocolate", Price: "24.00", Ingredients: "Chocolate, Granulado, Leite condensado"},
		{Name: "Romeu e Julieta", Price: "24.00", Ingredients: "Goiabada, Queijo minas, Açúcar de confeiteiro"},
		{Name: "Camarão", Price: "36.00", Ingredients: "Camarão, Catupiry, Alho-poró"},
	}
}
