package prompt

// Fixed customer-facing messages, Brazilian Portuguese.
const (
	AskNameInitial    = "Antes de continuarmos com o pedido, poderia me dizer seu nome?"
	AskNameRetry      = "Ainda preciso do seu nome para continuar. Como posso te chamar?"
	AskAddressInitial = "Ótimo, agora me informe o endereço completo para entrega, por favor."
	AskAddressRetry   = "Não consegui entender o endereço. Pode repetir com rua e número?"
	AskPaymentInitial = "Qual forma de pagamento você prefere (PIX, cartão na entrega ou dinheiro)?"
	AskPaymentRetry   = "Pode confirmar a forma de pagamento (PIX, cartão ou dinheiro)?"
	EditResumed       = "Sem problemas, vamos seguir editando o pedido. O que mais posso adicionar ou alterar?"
	OrderConfirmed    = "Pedido confirmado! Muito obrigado por escolher o Pastel do Mau!"
	AskConfirmation   = "Posso confirmar o pedido? Responda \"sim\" para fechar ou diga o que deseja alterar."
	Apology           = "Não consegui gerar uma resposta no momento."
)
