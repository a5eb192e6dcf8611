// Package handler defines the core contracts shared by the router,
// middleware, and response packages: the request Context interface, the
// generic HandlerFunc, the Middleware wrapper type, and the Response
// rendering function.
//
// Handlers return a Response instead of writing to the ResponseWriter
// directly, which lets the router normalize results and funnel rendering
// errors through a single error handler:
//
//	func getUser(ctx *router.Context) handler.Response {
//		user, err := repo.Find(ctx, ctx.Param("id"))
//		if err != nil {
//			return response.Error(err)
//		}
//		return response.JSON(user)
//	}
package handler
