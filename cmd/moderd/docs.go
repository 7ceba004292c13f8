package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           moderd API
// @version         1.0
// @description     HTTP API for toxicity and spam classification of Spanish review text.
//
// @contact.name   moderd maintainers
// @contact.url    https://github.com/your-org/moderd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
