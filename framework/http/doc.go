// Package http holds the JSON request and response helpers and the admin
// endpoints of a Resolver.
//
//	admin := gohttp.NewAdmin(resolver, logger, 30*time.Second)
//	router := routing.New(logger)
//	admin.Routes(router)
//
// Handlers wrap the standard types:
//
//	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
//	if errs := req.Validate(validation.Rules{"state": "sometimes|in:resolved,failed"}); errs != nil {
//	    res.ValidationError(errs) // 422 {"errors": {...}}
//	    return
//	}
//	res.Success(views) // 200 {"data": ...}
package http
