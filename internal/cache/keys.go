package cache

// KeyPrefix - префиксы для разных типов ключей
type KeyPrefix string

const (
	PrefixRevoked   KeyPrefix = "revoked" // revoked:tokenID
	PrefixState     KeyPrefix = "state"   // state:oauthState
	PrefixRateLimit KeyPrefix = "rate"    // rate:clientIP
)

// KeyBuilder - построитель ключей
type KeyBuilder struct {
	namespace string // Опциональный namespace, если Redis общий для нескольких сервисов
}

// NewKeyBuilder создает новый построитель ключей
func NewKeyBuilder(namespace string) *KeyBuilder {
	return &KeyBuilder{namespace: namespace}
}

// Build создает ключ с префиксом и опциональным namespace
func (k *KeyBuilder) Build(prefix KeyPrefix, parts ...string) string {
	key := string(prefix)

	if k.namespace != "" {
		key = k.namespace + ":" + key
	}

	for _, part := range parts {
		key += ":" + part
	}

	return key
}

func (k *KeyBuilder) Revoked(tokenID string) string {
	return k.Build(PrefixRevoked, tokenID)
}

func (k *KeyBuilder) State(state string) string {
	return k.Build(PrefixState, state)
}

// RateLimit создает ключ для rate limiting
func (k *KeyBuilder) RateLimit(clientID string) string {
	return k.Build(PrefixRateLimit, clientID)
}
