// Package cookies parses Netscape cookie jar files into request cookies.
package cookies
