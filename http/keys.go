package http

// Registered header keys.
var (
	Host          = newTypedKey[String]("Host", TargetRequest, kindString)
	UserAgent     = newTypedKey[String]("User-Agent", TargetRequest, kindString)
	Accept        = newTypedKey[String]("Accept", TargetRequest, kindString)
	Expect        = newTypedKey[String]("Expect", TargetRequest, kindString)
	Cookie        = newTypedKey[String]("Cookie", TargetRequest, kindString)
	Authorization = newTypedKey[String]("Authorization", TargetRequest, kindString)

	Server          = newTypedKey[String]("Server", TargetResponse, kindString)
	Location        = newTypedKey[String]("Location", TargetResponse, kindString)
	SetCookie       = newTypedKey[String]("Set-Cookie", TargetResponse, kindString)
	WWWAuthenticate = newTypedKey[String]("WWW-Authenticate", TargetResponse, kindString)
	RetryAfter      = newTypedKey[String]("Retry-After", TargetResponse, kindString)
	Vary            = newTypedKey[Tokens]("Vary", TargetResponse, kindTokens)

	ContentLength    = newTypedKey[Length]("Content-Length", TargetBoth, kindLength)
	ContentType      = newTypedKey[MediaType]("Content-Type", TargetBoth, kindMediaType)
	ContentEncoding  = newTypedKey[Tokens]("Content-Encoding", TargetBoth, kindTokens)
	TransferEncoding = newTypedKey[Tokens]("Transfer-Encoding", TargetBoth, kindTokens)
	Connection       = newTypedKey[Tokens]("Connection", TargetBoth, kindTokens)
	Trailer          = newTypedKey[Tokens]("Trailer", TargetBoth, kindTokens)
	Upgrade          = newTypedKey[Tokens]("Upgrade", TargetBoth, kindTokens)
	Allow            = newTypedKey[Tokens]("Allow", TargetBoth, kindTokens)
	Date             = newTypedKey[Timestamp]("Date", TargetBoth, kindDate)
	KeepAlive        = newTypedKey[String]("Keep-Alive", TargetBoth, kindString)

	CacheControlKey = newTypedKey[CacheControl]("Cache-Control", TargetBoth, kindCacheControl)
)

var keyTable = map[string]Key{}

func init() {
	for _, k := range []Key{
		Host.Key, UserAgent.Key, Accept.Key, Expect.Key, Cookie.Key, Authorization.Key,
		Server.Key, Location.Key, SetCookie.Key, WWWAuthenticate.Key, RetryAfter.Key, Vary.Key,
		ContentLength.Key, ContentType.Key, ContentEncoding.Key, TransferEncoding.Key,
		Connection.Key, Trailer.Key, Upgrade.Key, Allow.Key, Date.Key,
		CacheControlKey.Key, KeepAlive.Key,
	} {
		keyTable[k.name] = k
	}
}

// LookupKey returns the registered key for name,
// or a [RawKey] applying to both directions when name is unknown.
func LookupKey(name string) Key {
	if k, ok := keyTable[CanonicalName(name)]; ok {
		return k
	}
	return RawKey(name)
}
