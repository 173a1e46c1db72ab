// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth issues and reads the anonymous identity token.

# Identity Tokens

Tokens are random UUIDs:

	token, err := auth.NewIdentityToken()

A token is the only thing distinguishing one browser from another. It is
never included in realtime payloads; only its owner sees it, through
/api/userInfo.

# Cookie

The token travels in the uniqueId cookie, valid for about ten years,
http-only and SameSite=Strict:

	http.SetCookie(w, auth.IdentityCookie(token, basePath))

TokenFromRequest reads it back and ignores values that do not parse as a
UUID, so forged cookies are treated the same as a missing one.
*/
package auth
