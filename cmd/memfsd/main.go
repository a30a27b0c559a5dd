// Command memfsd mounts an in-memory filesystem at a host path and serves
// kernel requests against it until interrupted or the mount point is
// unmounted out from under it.
package main

func main() {
	Execute()
}
