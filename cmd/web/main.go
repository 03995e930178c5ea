// @title           MemberHub API
// @version         1.0
// @description     Membership platform API: accounts, role profiles, membership review, opportunities, applications and site content.
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:4000
// @BasePath        /api/v1

// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                "Bearer <access token>"

package main

import "memberhub_backend/internal/app"

func main() {
	app.Run()
}
